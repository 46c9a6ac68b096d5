package contracts

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starwatch-app/starwatch/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func at(sec int) model.Stamp {
	return model.At(time.Date(2024, 6, 1, 12, 0, sec, 0, time.UTC))
}

func accept(t *Tracker, id, name string) {
	t.HandleEvent(model.MissionAccepted{Stamp: at(0), MissionID: id, ContractName: name})
}

func TestAcceptCreatesFollowedMission(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Contract Accepted: CleanAir_Killship_Hard_3")

	active := tr.Active()
	require.Len(t, active, 1)
	m := active[0]
	assert.Equal(t, "m-1", m.ID)
	assert.Equal(t, "CLEAN AIR KILLSHIP HARD 3", m.Name)
	assert.Equal(t, model.MissionTracking, m.Status)
	assert.True(t, m.IsFollowed)
	assert.Equal(t, model.PlaceholderObjectiveText, m.CurrentObjectiveText)
}

func TestDuplicateAcceptanceMergesMissions(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "BountyHunt_Easy")
	require.Equal(t, "BOUNTY HUNT EASY", tr.Active()[0].Name)

	// Same id with a different raw name: merged into one entity, and the
	// established formatted name sticks.
	accept(tr, "M-1", "Bounty Hunt: Easy Prey")
	active := tr.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "BOUNTY HUNT EASY", active[0].Name)
	assert.True(t, active[0].IsFollowed)
}

func TestSingleFollowedInvariant(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "First Contract")
	accept(tr, "m-2", "Second Contract")
	accept(tr, "m-3", "Third Contract")

	active := tr.Active()
	require.Len(t, active, 3)

	followed := 0
	for _, m := range active {
		if m.IsFollowed {
			followed++
			assert.Equal(t, model.MissionTracking, m.Status)
		} else {
			assert.Equal(t, model.MissionAcceptedStatus, m.Status)
		}
	}
	assert.Equal(t, 1, followed)

	// Most recently promoted mission sits at the front.
	assert.Equal(t, "m-3", active[0].ID)
	assert.True(t, active[0].IsFollowed)

	// Re-accepting an older mission promotes it back to the front.
	accept(tr, "m-1", "First Contract")
	active = tr.Active()
	assert.Equal(t, "m-1", active[0].ID)
	assert.True(t, active[0].IsFollowed)
	assert.False(t, active[1].IsFollowed)
	assert.False(t, active[2].IsFollowed)
}

func TestObjectiveUpdateByMissionID(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")

	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "Deliver the goods:",
	})

	m := tr.Active()[0]
	assert.Equal(t, "DELIVER THE GOODS", m.CurrentObjectiveText)
	require.Len(t, m.Objectives, 1)
	assert.Equal(t, "o-1", m.Objectives[0].ID)
	assert.Equal(t, "DELIVER THE GOODS", m.Objectives[0].Text)
	assert.Equal(t, model.ObjectiveInProgress, m.Objectives[0].Status)
}

func TestObjectiveUpdateUnknownMissionIgnored(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")

	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-999", ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "Should be dropped",
	})
	assert.Empty(t, tr.Active()[0].Objectives)
}

func TestIDLessUpdateFocusesOwningMission(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "First Contract")
	accept(tr, "m-2", "Second Contract")
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectivePending, Text: "Find the wreck",
	})
	require.True(t, tr.Active()[0].SameID("m-1"))

	// m-2 gets promoted in between.
	accept(tr, "m-2", "Second Contract")
	require.True(t, tr.Active()[0].SameID("m-2"))

	// An id-less update for o-1 means the HUD switched back to m-1.
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "Find the wreck",
	})
	active := tr.Active()
	require.True(t, active[0].SameID("m-1"))
	assert.True(t, active[0].IsFollowed)
	assert.False(t, active[1].IsFollowed)
}

func TestValidTextUpdatePromotesMission(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "First Contract")
	accept(tr, "m-2", "Second Contract")
	require.True(t, tr.Active()[0].SameID("m-2"))

	// Progress on m-1 with usable text pulls it back into focus even though
	// the update carries a mission id and no focus signal.
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "Reach the outpost",
	})
	active := tr.Active()
	require.True(t, active[0].SameID("m-1"))
	assert.True(t, active[0].IsFollowed)
	assert.False(t, active[1].IsFollowed)

	// Garbage text carries no such weight.
	accept(tr, "m-2", "Second Contract")
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "~mission|broken~",
	})
	assert.True(t, tr.Active()[0].SameID("m-2"))
}

func TestEmptyNameSynthesizedAndUpgraded(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "")
	require.Equal(t, model.UnknownContractName, tr.Active()[0].Name)

	// A later acceptance line with a real name replaces the synthesized one.
	accept(tr, "m-1", "Alliance Aid: Hauler Hunters")
	assert.Equal(t, "ALLIANCE AID: HAULER HUNTERS", tr.Active()[0].Name)
}

func TestPendingFocusReconciledLater(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "First Contract")
	accept(tr, "m-2", "Second Contract")
	require.True(t, tr.Active()[0].SameID("m-2"))

	// Id-less update for an objective nobody owns yet: no mutation.
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), ObjectiveID: "o-9",
		State: model.ObjectivePending, Text: "Scout the outpost",
	})
	for _, m := range tr.Active() {
		assert.Empty(t, m.Objectives)
	}

	// The identified update arrives: the pending objective id marks m-1 as
	// the HUD focus even though the update itself carries a mission id.
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), MissionID: "m-1", ObjectiveID: "o-9",
		State: model.ObjectivePending, Text: "Scout the outpost",
	})
	active := tr.Active()
	require.True(t, active[0].SameID("m-1"))
	assert.True(t, active[0].IsFollowed)
}

func TestInvalidTextNeverApplied(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")

	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectivePending, Text: "~mission(Objective_Deliver)",
	})
	m := tr.Active()[0]
	assert.Equal(t, model.PlaceholderObjectiveText, m.CurrentObjectiveText)
	assert.Empty(t, m.Objectives, "technical text must not create an objective")

	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectivePending, Text: "",
	})
	assert.Empty(t, tr.Active()[0].Objectives)
}

func TestPlaceholderTextNotAppliedToMission(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")

	for _, text := range []string{"Active", "INITIALIZING", "Waiting for Data"} {
		tr.HandleEvent(model.ObjectiveUpdate{
			Stamp: at(1), MissionID: "m-1", ObjectiveID: "o-1",
			State: model.ObjectivePending, Text: text,
		})
		assert.Equal(t, model.PlaceholderObjectiveText, tr.Active()[0].CurrentObjectiveText)
	}

	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "Collect the samples",
	})
	assert.Equal(t, "COLLECT THE SAMPLES", tr.Active()[0].CurrentObjectiveText)
}

func TestPresenceMarkersDoNotOverwriteProgress(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")

	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveCompleted, Text: "Deliver the goods",
	})
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveTracked,
	})
	assert.Equal(t, model.ObjectiveCompleted, tr.Active()[0].Objectives[0].Status)

	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(3), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveUntracked,
	})
	assert.Equal(t, model.ObjectiveCompleted, tr.Active()[0].Objectives[0].Status)

	// A real progress state still lands.
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(4), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveFailed,
	})
	assert.Equal(t, model.ObjectiveFailed, tr.Active()[0].Objectives[0].Status)
}

func TestObjectiveDedupByTextBackfillsID(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")

	// First sighting came without an id.
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-1",
		State: model.ObjectivePending, Text: "Reach the depot",
	})
	require.Len(t, tr.Active()[0].Objectives, 1)
	assert.Empty(t, tr.Active()[0].Objectives[0].ID)

	// The same objective appears again with an id: merge, don't duplicate.
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "reach the depot",
	})
	m := tr.Active()[0]
	require.Len(t, m.Objectives, 1)
	assert.Equal(t, "o-1", m.Objectives[0].ID)
	assert.Equal(t, model.ObjectiveInProgress, m.Objectives[0].Status)
}

func TestMissionEndedOutcomes(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Winner")
	accept(tr, "m-2", "Loser")

	tr.HandleEvent(model.MissionEnded{Stamp: at(1), MissionID: "m-1", RawState: "MISSION_STATE_SUCCEEDED"})
	tr.HandleEvent(model.MissionEnded{Stamp: at(2), MissionID: "m-2", RawState: "MISSION_STATE_FAILED"})

	assert.Empty(t, tr.Active())
	history := tr.History()
	require.Len(t, history, 2)
	// Most recent first.
	assert.Equal(t, "m-2", history[0].ID)
	assert.Equal(t, model.MissionFailed, history[0].Status)
	assert.Equal(t, "m-1", history[1].ID)
	assert.Equal(t, model.MissionSuccess, history[1].Status)

	active, completed, failed := tr.Counters()
	assert.Equal(t, 0, active)
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
}

func TestDuplicateEndIgnored(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")

	tr.HandleEvent(model.MissionEnded{Stamp: at(1), MissionID: "m-1", RawState: "MISSION_STATE_COMPLETED"})
	tr.HandleEvent(model.MissionEnded{Stamp: at(2), MissionID: "M-1", RawState: "MISSION_STATE_FAILED"})

	history := tr.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.MissionSuccess, history[0].Status)

	_, completed, failed := tr.Counters()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 0, failed)
}

func TestUnknownContractSynthesized(t *testing.T) {
	tr := New(testLogger())
	tr.HandleEvent(model.MissionEnded{Stamp: at(1), MissionID: "m-9", RawState: "MISSION_STATE_ABANDONED"})

	history := tr.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.UnknownContractName, history[0].Name)
	assert.Equal(t, model.MissionFailed, history[0].Status)
}

func TestSessionStartClearsState(t *testing.T) {
	tr := New(testLogger())
	accept(tr, "m-1", "Supply Run")
	tr.HandleEvent(model.MissionEnded{Stamp: at(1), MissionID: "m-1", RawState: "MISSION_STATE_COMPLETED"})

	tr.HandleEvent(model.SessionStart{Stamp: at(2)})

	assert.Empty(t, tr.Active())
	assert.Empty(t, tr.History())
	active, completed, failed := tr.Counters()
	assert.Zero(t, active+completed+failed)
}

func TestSilentEventsStillDriveState(t *testing.T) {
	tr := New(testLogger())
	tr.HandleEvent(model.Silent{Inner: model.MissionAccepted{
		Stamp: at(0), MissionID: "m-1", ContractName: "Replayed Contract",
	}})
	require.Len(t, tr.Active(), 1)
	assert.Equal(t, "REPLAYED CONTRACT", tr.Active()[0].Name)
}

type fakeArchiver struct {
	missions []*model.Mission
	err      error
}

func (f *fakeArchiver) ArchiveMission(m *model.Mission) error {
	f.missions = append(f.missions, m)
	return f.err
}

func TestArchiverReceivesTerminalMissions(t *testing.T) {
	arch := &fakeArchiver{}
	tr := New(testLogger(), WithArchiver(arch))

	accept(tr, "m-1", "Supply Run")
	tr.HandleEvent(model.MissionEnded{Stamp: at(1), MissionID: "m-1", RawState: "MISSION_STATE_COMPLETED"})

	require.Len(t, arch.missions, 1)
	assert.Equal(t, "m-1", arch.missions[0].ID)
	assert.Equal(t, model.MissionSuccess, arch.missions[0].Status)

	// Archive failures are logged, not fatal.
	arch.err = errors.New("disk full")
	tr.HandleEvent(model.MissionEnded{Stamp: at(2), MissionID: "m-2", RawState: "MISSION_STATE_FAILED"})
	assert.Len(t, tr.History(), 2)
}

func TestFullMissionLifecycle(t *testing.T) {
	tr := New(testLogger())

	accept(tr, "m-1", "Contract Accepted: CleanAir_Killship_Hard_3")
	accept(tr, "m-1", "Contract Accepted: CleanAir_Killship_Hard_3")
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(1), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveInProgress, Text: "Eliminate the targets",
	})
	tr.HandleEvent(model.ObjectiveUpdate{
		Stamp: at(2), MissionID: "m-1", ObjectiveID: "o-1",
		State: model.ObjectiveCompleted, Text: "Eliminate the targets",
	})
	tr.HandleEvent(model.MissionEnded{Stamp: at(3), MissionID: "m-1", RawState: "MISSION_STATE_SUCCEEDED"})

	assert.Empty(t, tr.Active())
	history := tr.History()
	require.Len(t, history, 1)

	m := history[0]
	assert.Equal(t, "CLEAN AIR KILLSHIP HARD 3", m.Name)
	assert.Equal(t, model.MissionSuccess, m.Status)
	assert.Equal(t, "ELIMINATE THE TARGETS", m.CurrentObjectiveText)
	require.Len(t, m.Objectives, 1)
	assert.Equal(t, model.ObjectiveCompleted, m.Objectives[0].Status)
	assert.False(t, m.IsFollowed)
}
