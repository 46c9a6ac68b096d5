// Package stats folds the event stream into a per-session snapshot of player
// and environment state: who is logged in, where they are, what they fly,
// and how the session is going.
package stats

import (
	"log/slog"
	"sync"
	"time"

	"github.com/starwatch-app/starwatch/internal/model"
)

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	PilotHandle   string
	Build         string
	Jurisdiction  string
	InArmistice   bool
	Location      string
	Shard         string
	SessionID     string
	Vehicle       string
	UptimeSeconds int
	Kills         int
	Deaths        int
	StartedAt     time.Time
}

// Session subscribes to the bus and keeps a running snapshot. Reads and
// writes go through one mutex; the handler does no I/O.
type Session struct {
	logger *slog.Logger

	mu   sync.Mutex
	snap Snapshot
}

func New(logger *slog.Logger) *Session {
	return &Session{logger: logger.With("component", "stats")}
}

// HandleEvent is the bus subscription entry point. Silent events still count:
// replayed history establishes the current session baseline.
func (s *Session) HandleEvent(ev model.Event) {
	ev, _ = model.Unwrap(ev)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch e := ev.(type) {
	case model.SessionStart:
		s.snap = Snapshot{StartedAt: e.Time()}
	case model.PlayerLogin:
		s.snap.PilotHandle = e.Handle
	case model.BuildInfo:
		s.snap.Build = e.Build
	case model.Jurisdiction:
		s.snap.Jurisdiction = e.Name
	case model.Armistice:
		s.snap.InArmistice = e.Entering
	case model.LocationChange:
		s.snap.Location = e.LocationName
	case model.SessionUptime:
		s.snap.UptimeSeconds = e.Seconds
	case model.NetworkIdentity:
		if e.Shard != "" {
			s.snap.Shard = e.Shard
		}
		if e.SessionID != "" {
			s.snap.SessionID = e.SessionID
		}
	case model.CombatDeath:
		if e.Victim != "" && e.Victim == s.snap.PilotHandle {
			s.snap.Deaths++
		} else if e.Killer != "" && e.Killer == s.snap.PilotHandle {
			s.snap.Kills++
		}
	case model.DeathOrSpawn:
		if !e.IsSpawn {
			s.snap.Deaths++
		}
	case model.VehicleState:
		switch e.Action {
		case model.VehicleConnected:
			s.snap.Vehicle = e.VehicleName
		case model.VehicleDisconnected:
			if e.VehicleName == "" || e.VehicleName == s.snap.Vehicle {
				s.snap.Vehicle = ""
			}
		}
	}
}

// Current returns a copy of the session snapshot.
func (s *Session) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}
