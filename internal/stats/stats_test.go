package stats

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/starwatch-app/starwatch/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stamp() model.Stamp {
	return model.At(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestSessionAccumulates(t *testing.T) {
	s := New(testLogger())

	s.HandleEvent(model.PlayerLogin{Stamp: stamp(), Handle: "Aster"})
	s.HandleEvent(model.BuildInfo{Stamp: stamp(), Build: "9524937"})
	s.HandleEvent(model.Jurisdiction{Stamp: stamp(), Name: "Crusader"})
	s.HandleEvent(model.Armistice{Stamp: stamp(), Entering: true})
	s.HandleEvent(model.LocationChange{Stamp: stamp(), LocationName: "ORISON"})
	s.HandleEvent(model.SessionUptime{Stamp: stamp(), Seconds: 340})
	s.HandleEvent(model.NetworkIdentity{Stamp: stamp(), Shard: "EU WEST 80", SessionID: "sess-1"})
	s.HandleEvent(model.VehicleState{Stamp: stamp(), VehicleName: "CUTLASS BLACK", Action: model.VehicleConnected})

	snap := s.Current()
	assert.Equal(t, "Aster", snap.PilotHandle)
	assert.Equal(t, "9524937", snap.Build)
	assert.Equal(t, "Crusader", snap.Jurisdiction)
	assert.True(t, snap.InArmistice)
	assert.Equal(t, "ORISON", snap.Location)
	assert.Equal(t, 340, snap.UptimeSeconds)
	assert.Equal(t, "EU WEST 80", snap.Shard)
	assert.Equal(t, "sess-1", snap.SessionID)
	assert.Equal(t, "CUTLASS BLACK", snap.Vehicle)
}

func TestKillAndDeathAttribution(t *testing.T) {
	s := New(testLogger())
	s.HandleEvent(model.PlayerLogin{Stamp: stamp(), Handle: "Aster"})

	s.HandleEvent(model.CombatDeath{Stamp: stamp(), Victim: "Pirate_01", Killer: "Aster", Reason: "Ballistic"})
	s.HandleEvent(model.CombatDeath{Stamp: stamp(), Victim: "Aster", Killer: "Pirate_02", Reason: "Laser"})
	// An unrelated kill is neither ours nor against us.
	s.HandleEvent(model.CombatDeath{Stamp: stamp(), Victim: "Pirate_03", Killer: "Pirate_04", Reason: "Collision"})

	snap := s.Current()
	assert.Equal(t, 1, snap.Kills)
	assert.Equal(t, 1, snap.Deaths)
}

func TestVehicleDisconnect(t *testing.T) {
	s := New(testLogger())
	s.HandleEvent(model.VehicleState{Stamp: stamp(), VehicleName: "CUTLASS BLACK", Action: model.VehicleConnected})
	s.HandleEvent(model.VehicleState{Stamp: stamp(), VehicleName: "OTHER SHIP", Action: model.VehicleDisconnected})
	assert.Equal(t, "CUTLASS BLACK", s.Current().Vehicle, "disconnect of another vehicle keeps ours")

	s.HandleEvent(model.VehicleState{Stamp: stamp(), VehicleName: "CUTLASS BLACK", Action: model.VehicleDisconnected})
	assert.Empty(t, s.Current().Vehicle)
}

func TestSessionStartResets(t *testing.T) {
	s := New(testLogger())
	s.HandleEvent(model.PlayerLogin{Stamp: stamp(), Handle: "Aster"})
	s.HandleEvent(model.SessionUptime{Stamp: stamp(), Seconds: 900})

	started := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	s.HandleEvent(model.SessionStart{Stamp: model.At(started)})

	snap := s.Current()
	assert.Empty(t, snap.PilotHandle)
	assert.Zero(t, snap.UptimeSeconds)
	assert.Equal(t, started, snap.StartedAt)
}

func TestSilentEventsCount(t *testing.T) {
	s := New(testLogger())
	s.HandleEvent(model.Silent{Inner: model.PlayerLogin{Stamp: stamp(), Handle: "Aster"}})
	assert.Equal(t, "Aster", s.Current().PilotHandle)
}
