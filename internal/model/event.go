// Package model defines the domain types shared across the pipeline: the
// closed set of game events extracted from log lines, mission and objective
// state, and user-authored dynamic rules.
package model

import "time"

// Event is a single occurrence recognized in the game log. The set of
// implementations in this package is closed: consumers switch exhaustively
// over the concrete types.
type Event interface {
	// Time returns when the event occurred, taken from the line's leading
	// timestamp or the wall clock if the line carried none.
	Time() time.Time

	isEvent()
}

// Stamp carries the event timestamp and is embedded by every variant.
type Stamp struct {
	Timestamp time.Time
}

// Time implements Event.
func (s Stamp) Time() time.Time { return s.Timestamp }

func (Stamp) isEvent() {}

// At is a convenience constructor for building variants.
func At(t time.Time) Stamp { return Stamp{Timestamp: t} }

// Silent wraps an event that must update internal state but must never be
// surfaced in a human-facing feed. Subscribers that maintain authoritative
// state unwrap it; subscribers that render feeds skip it.
type Silent struct {
	Inner Event
}

// Time implements Event by deferring to the wrapped event.
func (s Silent) Time() time.Time { return s.Inner.Time() }

func (Silent) isEvent() {}

// Unwrap peels a Silent wrapper off an event. The second return reports
// whether the event was silent.
func Unwrap(ev Event) (Event, bool) {
	if s, ok := ev.(Silent); ok {
		return s.Inner, true
	}
	return ev, false
}

// PlayerLogin reports the authenticated player handle.
type PlayerLogin struct {
	Stamp
	Handle string
}

// BuildInfo reports the game client build number.
type BuildInfo struct {
	Stamp
	Build string
}

// Jurisdiction reports entry into a named jurisdiction.
type Jurisdiction struct {
	Stamp
	Name string
}

// Armistice reports crossing an armistice zone boundary.
type Armistice struct {
	Stamp
	Entering bool
}

// SessionUptime reports the server-announced session uptime.
type SessionUptime struct {
	Stamp
	Seconds int
}

// LocationChange reports that the player's resolved location changed.
type LocationChange struct {
	Stamp
	LocationName string
}

// MedicalAlert reports a critical player health condition.
type MedicalAlert struct {
	Stamp
	Type string
}

// Quantum reports a quantum travel state transition (started, finished,
// aborted).
type Quantum struct {
	Stamp
	State string
}

// DeathOrSpawn reports the local player dying or a new clone spawning.
type DeathOrSpawn struct {
	Stamp
	IsSpawn bool
}

// CombatDeath reports an actor-death record with victim, killer, and reason.
type CombatDeath struct {
	Stamp
	Victim string
	Killer string
	Reason string
}

// VehicleAction classifies a vehicle state transition.
type VehicleAction string

const (
	VehicleConnected    VehicleAction = "CONNECTED"
	VehicleDisconnected VehicleAction = "DISCONNECTED"
	VehicleOutOfSeat    VehicleAction = "OUT OF SEAT"
)

// VehicleState reports the player connecting to, disconnecting from, or
// leaving the seat of a vehicle.
type VehicleState struct {
	Stamp
	VehicleName string
	Action      VehicleAction
}

// MissionAccepted reports a contract being accepted. ContractName is the raw,
// possibly technical, name as it appeared in the log.
type MissionAccepted struct {
	Stamp
	MissionID    string
	ContractName string
}

// ObjectiveUpdate reports progress on a mission objective. MissionID or
// ObjectiveID may be empty when the source line carried only one of them.
// Text is optional human-readable objective text.
type ObjectiveUpdate struct {
	Stamp
	MissionID   string
	ObjectiveID string
	State       ObjectiveStatus
	Text        string
}

// MissionEnded reports a contract reaching a terminal state. RawState is the
// unparsed state token from the log (e.g. "MISSION_STATE_FAILED").
type MissionEnded struct {
	Stamp
	MissionID string
	RawState  string
}

// DynamicMatch reports a user-authored rule matching a line. Groups holds the
// regex capture groups, with Groups[0] being the full match.
type DynamicMatch struct {
	Stamp
	Rule   DynamicRule
	Groups []string
}

// Heartbeat is emitted for every timestamped line and drives liveness
// displays.
type Heartbeat struct {
	Stamp
}

// SessionStart marks the beginning of a new game session ("Log started on").
// Trackers clear their collections and counters when they see it.
type SessionStart struct {
	Stamp
}

// CPUInfo reports host CPU telemetry. Either Name or Cores is set per event.
type CPUInfo struct {
	Stamp
	Name  string
	Cores int
}

// GPUInfo reports GPU telemetry. Either Name or MemoryMB is set per event.
type GPUInfo struct {
	Stamp
	Name     string
	MemoryMB string
}

// MemoryInfo reports installed and available physical memory in MB.
type MemoryInfo struct {
	Stamp
	TotalMB     string
	AvailableMB string
}

// DisplayInfo reports display mode telemetry. Either Resolution or
// RefreshRate is set per event.
type DisplayInfo struct {
	Stamp
	Resolution  string
	RefreshRate string
}

// Peripheral reports a connected input device.
type Peripheral struct {
	Stamp
	DeviceName string
}

// NetworkIdentity reports shard, RPC endpoint, trace session, or environment
// identity fragments. Unset fields are empty.
type NetworkIdentity struct {
	Stamp
	Shard     string
	Endpoint  string
	SessionID string
	EnvID     string
}

// AccountInfo reports the numeric account identifier.
type AccountInfo struct {
	Stamp
	AccountID string
}

// ServerConnection reports a connection request to a game server address.
type ServerConnection struct {
	Stamp
	Address string
}
