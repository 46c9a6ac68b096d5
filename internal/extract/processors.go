package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/starwatch-app/starwatch/internal/model"
)

func one(ev model.Event) []model.Event { return []model.Event{ev} }

type characterStatusProcessor struct{}

func (characterStatusProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Handle[")
}

func (characterStatusProcessor) Process(line string, ts time.Time) []model.Event {
	m := reCharacterLogin.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.PlayerLogin{Stamp: model.At(ts), Handle: m[1]})
}

type buildInfoProcessor struct{}

func (buildInfoProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "BackupNameAttachment=")
}

func (buildInfoProcessor) Process(line string, ts time.Time) []model.Event {
	m := reBuildInfo.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.BuildInfo{Stamp: model.At(ts), Build: m[1]})
}

type jurisdictionProcessor struct{}

func (jurisdictionProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Jurisdiction")
}

func (jurisdictionProcessor) Process(line string, ts time.Time) []model.Event {
	m := reJurisdiction.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.Jurisdiction{Stamp: model.At(ts), Name: m[1]})
}

type armisticeProcessor struct{}

func (armisticeProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Armistice Zone")
}

func (armisticeProcessor) Process(line string, ts time.Time) []model.Event {
	m := reArmistice.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.Armistice{Stamp: model.At(ts), Entering: strings.EqualFold(m[1], "Entering")})
}

type sessionUptimeProcessor struct{}

func (sessionUptimeProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Session Uptime:")
}

func (sessionUptimeProcessor) Process(line string, ts time.Time) []model.Event {
	m := reSessionUptime.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return one(model.SessionUptime{Stamp: model.At(ts), Seconds: seconds})
}

type killProcessor struct{}

func (killProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Actor Death")
}

func (killProcessor) Process(line string, ts time.Time) []model.Event {
	m := reActorDeath.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.CombatDeath{Stamp: model.At(ts), Victim: m[1], Killer: m[2], Reason: m[3]})
}

type vehicleProcessor struct{}

func (vehicleProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "channel '@vehicle_Name") ||
		strings.Contains(line, "control token for '")
}

func (vehicleProcessor) Process(line string, ts time.Time) []model.Event {
	if m := reVehicleChannel.FindStringSubmatch(line); m != nil {
		action := model.VehicleDisconnected
		if strings.EqualFold(m[1], "joined") {
			action = model.VehicleConnected
		}
		return one(model.VehicleState{Stamp: model.At(ts), VehicleName: CleanVehicleName(m[2]), Action: action})
	}
	if m := reVehicleControl.FindStringSubmatch(line); m != nil {
		action := model.VehicleOutOfSeat
		if strings.Contains(line, "SetDriver") {
			action = model.VehicleConnected
		}
		return one(model.VehicleState{Stamp: model.At(ts), VehicleName: CleanVehicleName(m[2]), Action: action})
	}
	return nil
}

// CleanVehicleName turns an internal vehicle identifier into a display name:
// the leading manufacturer code is dropped, underscores become spaces, and
// the result is upper-cased. "AEGS_Gladius_2" becomes "GLADIUS 2".
func CleanVehicleName(raw string) string {
	if raw == "" {
		return "UNKNOWN"
	}
	name := strings.ReplaceAll(raw, "vehicle_Name", "")

	parts := strings.Split(name, "_")
	if len(parts) > 1 {
		name = strings.Join(parts[1:], " ")
	}
	return strings.TrimSpace(strings.ToUpper(strings.ReplaceAll(name, "_", " ")))
}

type locationProcessor struct {
	resolver LocationResolver
}

func (locationProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Location[") ||
		strings.Contains(line, "Obstructing Entity") ||
		strings.Contains(line, "ATC Location:") ||
		strings.Contains(line, "Station_DockingTube") ||
		strings.Contains(line, "requested inventory")
}

func (p locationProcessor) Process(line string, ts time.Time) []model.Event {
	// Inventory requests resolve even without a mapping entry: the raw ID is
	// still a usable location hint.
	if m := reInventoryReq.FindStringSubmatch(line); m != nil {
		name := m[1]
		if mapped, ok := p.lookup(m[1]); ok {
			name = mapped
		}
		return one(model.LocationChange{Stamp: model.At(ts), LocationName: name})
	}
	if m := reAtcLocation.FindStringSubmatch(line); m != nil {
		if name, ok := p.lookup(m[1]); ok {
			return one(model.LocationChange{Stamp: model.At(ts), LocationName: name})
		}
	}
	if m := reStationDocking.FindStringSubmatch(line); m != nil {
		if name, ok := p.lookup(m[1]); ok {
			return one(model.LocationChange{Stamp: model.At(ts), LocationName: name})
		}
	}
	if m := reLocationID.FindStringSubmatch(line); m != nil {
		if name, ok := p.lookup(m[1]); ok {
			return one(model.LocationChange{Stamp: model.At(ts), LocationName: name})
		}
	}
	if m := reObstruction.FindStringSubmatch(line); m != nil {
		if name, ok := p.lookup(m[1]); ok {
			return one(model.LocationChange{Stamp: model.At(ts), LocationName: "NEAR " + name})
		}
	}
	return nil
}

func (p locationProcessor) lookup(id string) (string, bool) {
	if p.resolver == nil {
		return "", false
	}
	return p.resolver.LocationName(id)
}

type medicalProcessor struct{}

func (medicalProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "[STAMINA]")
}

func (medicalProcessor) Process(line string, ts time.Time) []model.Event {
	m := reMedicalAlert.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.MedicalAlert{Stamp: model.At(ts), Type: m[1]})
}

type quantumProcessor struct{}

func (quantumProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Quantum travel")
}

func (quantumProcessor) Process(line string, ts time.Time) []model.Event {
	m := reQuantumState.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.Quantum{Stamp: model.At(ts), State: m[1]})
}

type deathSpawnProcessor struct{}

func (deathSpawnProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Character killed") || strings.Contains(line, "Spawned!")
}

func (deathSpawnProcessor) Process(line string, ts time.Time) []model.Event {
	m := reDeathSpawn.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return one(model.DeathOrSpawn{Stamp: model.At(ts), IsSpawn: strings.Contains(m[1], "Spawned!")})
}

type heartbeatProcessor struct{}

func (heartbeatProcessor) CanProcess(line string) bool {
	return strings.HasPrefix(line, "<")
}

func (heartbeatProcessor) Process(line string, ts time.Time) []model.Event {
	return one(model.Heartbeat{Stamp: model.At(ts)})
}

type sessionStartProcessor struct{}

func (sessionStartProcessor) CanProcess(line string) bool {
	return strings.Contains(line, "Log started on")
}

func (sessionStartProcessor) Process(line string, ts time.Time) []model.Event {
	return one(model.SessionStart{Stamp: model.At(ts)})
}
