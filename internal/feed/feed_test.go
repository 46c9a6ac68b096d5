package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starwatch-app/starwatch/internal/model"
)

func stamp() model.Stamp {
	return model.At(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
}

func TestMapSkipsNonDisplayEvents(t *testing.T) {
	skipped := []model.Event{
		model.Heartbeat{Stamp: stamp()},
		model.SessionStart{Stamp: stamp()},
		model.Silent{Inner: model.Quantum{Stamp: stamp(), State: "started"}},
		model.CPUInfo{Stamp: stamp(), Name: "Ryzen 9"},
		model.NetworkIdentity{Stamp: stamp(), Shard: "EU WEST 80"},
	}
	for _, ev := range skipped {
		_, ok := Map(ev)
		assert.False(t, ok, "%T should not produce a feed entry", ev)
	}
}

func TestMapCombatDeath(t *testing.T) {
	entry, ok := Map(model.CombatDeath{Stamp: stamp(), Victim: "Pirate_01", Killer: "Aster", Reason: "Ballistic"})
	require.True(t, ok)
	assert.Equal(t, "Combat Result", entry.Title)
	assert.Equal(t, "Aster eliminated Pirate_01", entry.Description)
	assert.Equal(t, CategoryKills, entry.Category)
	assert.Equal(t, "Dismiss24", entry.Icon)
}

func TestMapMissionAccepted(t *testing.T) {
	entry, ok := Map(model.MissionAccepted{Stamp: stamp(), MissionID: "m-1", ContractName: "CleanAir_Killship_Hard_3"})
	require.True(t, ok)
	assert.Equal(t, "CONTRACT ACCEPTED", entry.Title)
	assert.Equal(t, "CLEANAIR KILLSHIP HARD 3", entry.Description)
	assert.Equal(t, CategoryContracts, entry.Category)
}

func TestMapObjectiveUpdate(t *testing.T) {
	entry, ok := Map(model.ObjectiveUpdate{Stamp: stamp(), MissionID: "m-1", State: model.ObjectiveCompleted, Text: "Deliver the goods"})
	require.True(t, ok)
	assert.Equal(t, "OBJECTIVE DONE", entry.Title)
	assert.Equal(t, "DELIVER THE GOODS", entry.Description)
	assert.Equal(t, "CheckmarkCircle24", entry.Icon)

	entry, ok = Map(model.ObjectiveUpdate{Stamp: stamp(), MissionID: "m-1", State: model.ObjectivePending})
	require.True(t, ok)
	assert.Equal(t, "NEW OBJECTIVE", entry.Title)
	assert.Equal(t, "TECHNICAL UPDATE", entry.Description)
	assert.Equal(t, "ArrowCircleRight24", entry.Icon)
}

func TestMapMissionEnded(t *testing.T) {
	entry, ok := Map(model.MissionEnded{Stamp: stamp(), MissionID: "m-1", RawState: "MISSION_STATE_FAILED"})
	require.True(t, ok)
	assert.Equal(t, "CONTRACT FAILED", entry.Title)
	assert.Equal(t, "FAILED", entry.Description)
	assert.Equal(t, "DismissCircle24", entry.Icon)

	entry, ok = Map(model.MissionEnded{Stamp: stamp(), MissionID: "m-2", RawState: "MISSION_STATE_SUCCEEDED"})
	require.True(t, ok)
	assert.Equal(t, "CONTRACT COMPLETE", entry.Title)
	assert.Equal(t, "SUCCEEDED", entry.Description)
}

func TestMapDynamicMatch(t *testing.T) {
	rule := model.DynamicRule{
		Name:                "Cargo Scan",
		Category:            "CUSTOM",
		TitleTemplate:       "Scan of {1}",
		DescriptionTemplate: "Result: {2}",
		Icon:                "Activity24",
	}
	entry, ok := Map(model.DynamicMatch{
		Stamp:  stamp(),
		Rule:   rule,
		Groups: []string{"full match", "Hull C", "clean"},
	})
	require.True(t, ok)
	assert.Equal(t, "Scan of Hull C", entry.Title)
	assert.Equal(t, "Result: clean", entry.Description)
	assert.Equal(t, "CUSTOM", entry.Category)
	assert.Equal(t, "Heartpulse24", entry.Icon, "default activity icon is swapped for display")
}

func TestMapCarriesTimestamp(t *testing.T) {
	entry, ok := Map(model.Quantum{Stamp: stamp(), State: "finished"})
	require.True(t, ok)
	assert.Equal(t, stamp().Time(), entry.At)
}
