// Package feed translates domain events into human-facing activity entries.
package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/starwatch-app/starwatch/internal/model"
)

// Feed categories. Dynamic rules supply their own.
const (
	CategorySystem    = "SYSTEM"
	CategoryAreas     = "AREAS"
	CategoryKills     = "KILLS"
	CategoryVehicles  = "VEHICLES"
	CategoryContracts = "CONTRACTS"
)

// Entry is one row of the activity feed.
type Entry struct {
	Title       string
	Description string
	Category    string
	Icon        string
	At          time.Time
}

// Map renders an event as a feed entry. The second return is false for
// events that carry no display value: silent-wrapped replays, heartbeats,
// session boundaries, and the hardware/network telemetry variants.
func Map(ev model.Event) (Entry, bool) {
	if _, silent := model.Unwrap(ev); silent {
		return Entry{}, false
	}

	switch e := ev.(type) {
	case model.DynamicMatch:
		icon := e.Rule.Icon
		if icon == "Activity24" {
			icon = "Heartpulse24"
		}
		title, description := e.Rule.Expand(e.Groups)
		return Entry{
			Title:       title,
			Description: description,
			Category:    e.Rule.Category,
			Icon:        icon,
			At:          e.Time(),
		}, true

	case model.PlayerLogin:
		return Entry{
			Title:       "Pilot Identified",
			Description: "Authenticated as " + e.Handle,
			Category:    CategorySystem,
			Icon:        "Person24",
			At:          e.Time(),
		}, true

	case model.Jurisdiction:
		return Entry{
			Title:       "Jurisdiction Change",
			Description: e.Name,
			Category:    CategoryAreas,
			Icon:        "Location24",
			At:          e.Time(),
		}, true

	case model.Armistice:
		desc := "Leaving Armistice"
		if e.Entering {
			desc = "Entering Armistice"
		}
		return Entry{
			Title:       "Security Alert",
			Description: desc,
			Category:    CategoryAreas,
			Icon:        "Shield24",
			At:          e.Time(),
		}, true

	case model.CombatDeath:
		return Entry{
			Title:       "Combat Result",
			Description: fmt.Sprintf("%s eliminated %s", e.Killer, e.Victim),
			Category:    CategoryKills,
			Icon:        "Dismiss24",
			At:          e.Time(),
		}, true

	case model.LocationChange:
		return Entry{
			Title:       "Location Update",
			Description: "Area identified: " + e.LocationName,
			Category:    CategoryAreas,
			Icon:        "Map24",
			At:          e.Time(),
		}, true

	case model.MedicalAlert:
		return Entry{
			Title:       "Medical Alert",
			Description: fmt.Sprintf("CRITICAL: Player started %s!", e.Type),
			Category:    CategorySystem,
			Icon:        "Warning24",
			At:          e.Time(),
		}, true

	case model.Quantum:
		return Entry{
			Title:       "Quantum Link",
			Description: "Quantum travel " + e.State,
			Category:    CategorySystem,
			Icon:        "Rocket24",
			At:          e.Time(),
		}, true

	case model.DeathOrSpawn:
		if e.IsSpawn {
			return Entry{
				Title:       "Life Support",
				Description: "New actor clone spawned",
				Category:    CategorySystem,
				Icon:        "Heart24",
				At:          e.Time(),
			}, true
		}
		return Entry{
			Title:       "Vital Signs Lost",
			Description: "Character killed in action",
			Category:    CategorySystem,
			Icon:        "Dismiss24",
			At:          e.Time(),
		}, true

	case model.VehicleState:
		return Entry{
			Title:       "Vehicle " + string(e.Action),
			Description: e.VehicleName,
			Category:    CategoryVehicles,
			Icon:        "VehicleBus24",
			At:          e.Time(),
		}, true

	case model.MissionAccepted:
		return Entry{
			Title:       "CONTRACT ACCEPTED",
			Description: strings.ToUpper(strings.ReplaceAll(e.ContractName, "_", " ")),
			Category:    CategoryContracts,
			Icon:        "ClipboardTask24",
			At:          e.Time(),
		}, true

	case model.ObjectiveUpdate:
		entry := Entry{
			Title:       "NEW OBJECTIVE",
			Description: strings.ToUpper(e.Text),
			Category:    CategoryContracts,
			Icon:        "ArrowCircleRight24",
			At:          e.Time(),
		}
		if e.State == model.ObjectiveCompleted {
			entry.Title = "OBJECTIVE DONE"
			entry.Icon = "CheckmarkCircle24"
		}
		if e.Text == "" {
			entry.Description = "TECHNICAL UPDATE"
		}
		return entry, true

	case model.MissionEnded:
		entry := Entry{
			Title:       "CONTRACT COMPLETE",
			Description: strings.ReplaceAll(e.RawState, "MISSION_STATE_", ""),
			Category:    CategoryContracts,
			Icon:        "CheckmarkCircle24",
			At:          e.Time(),
		}
		if strings.Contains(e.RawState, "FAILED") {
			entry.Title = "CONTRACT FAILED"
			entry.Icon = "DismissCircle24"
		}
		return entry, true
	}

	return Entry{}, false
}
