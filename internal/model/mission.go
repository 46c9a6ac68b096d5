package model

import (
	"strings"
	"time"
)

// MissionStatus is the lifecycle state of a mission.
type MissionStatus string

const (
	MissionAcceptedStatus MissionStatus = "ACCEPTED"
	MissionTracking       MissionStatus = "TRACKING"
	MissionSuccess        MissionStatus = "SUCCESS"
	MissionFailed         MissionStatus = "FAILED"
)

// ObjectiveStatus is the progress state of a single objective. Tracked and
// Untracked are presence markers from HUD marker lines; they never overwrite
// a progress status.
type ObjectiveStatus string

const (
	ObjectivePending    ObjectiveStatus = "PENDING"
	ObjectiveTracked    ObjectiveStatus = "TRACKED"
	ObjectiveUntracked  ObjectiveStatus = "UNTRACKED"
	ObjectiveInProgress ObjectiveStatus = "INPROGRESS"
	ObjectiveCompleted  ObjectiveStatus = "COMPLETED"
	ObjectiveFailed     ObjectiveStatus = "FAILED"
)

// PlaceholderObjectiveText is the current-objective display text of a mission
// that has not yet received any valid objective text.
const PlaceholderObjectiveText = "WAITING FOR DATA..."

// UnknownContractName names missions synthesized from a terminal notification
// that never had a matching acceptance.
const UnknownContractName = "UNKNOWN CONTRACT"

// Objective is one sub-step of a mission. ID may be empty when the source
// line carried only display text; such objectives are deduplicated by
// normalized text instead.
type Objective struct {
	ID     string
	Text   string
	Status ObjectiveStatus
}

// Mission is a long-lived contract whose lifecycle spans many log lines.
// Identity is the case-insensitive ID.
type Mission struct {
	ID                   string
	Name                 string
	AcceptedAt           time.Time
	Status               MissionStatus
	CurrentObjectiveText string
	IsFollowed           bool
	Objectives           []*Objective
}

// NewMission returns a mission in the freshly-accepted state.
func NewMission(id, name string, acceptedAt time.Time) *Mission {
	return &Mission{
		ID:                   id,
		Name:                 name,
		AcceptedAt:           acceptedAt,
		Status:               MissionAcceptedStatus,
		CurrentObjectiveText: PlaceholderObjectiveText,
	}
}

// Clone returns a deep copy, so snapshots handed to readers stay stable while
// the tracker keeps mutating the original.
func (m *Mission) Clone() *Mission {
	c := *m
	c.Objectives = make([]*Objective, len(m.Objectives))
	for i, o := range m.Objectives {
		oc := *o
		c.Objectives[i] = &oc
	}
	return &c
}

// SameID reports whether the mission's identity matches id, ignoring case.
func (m *Mission) SameID(id string) bool {
	return strings.EqualFold(m.ID, id)
}

// FindObjective returns the objective with the given id (case-insensitive),
// or nil.
func (m *Mission) FindObjective(objectiveID string) *Objective {
	for _, o := range m.Objectives {
		if strings.EqualFold(o.ID, objectiveID) {
			return o
		}
	}
	return nil
}
