// Package contracts maintains the mission state machine: two ordered
// collections (active and history) folded from mission events on the bus.
package contracts

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/starwatch-app/starwatch/internal/model"
	"github.com/starwatch-app/starwatch/internal/telemetry"
)

// Archiver persists terminal missions. Implementations must tolerate being
// called from the event-delivery goroutine.
type Archiver interface {
	ArchiveMission(m *model.Mission) error
}

// Tracker is the single authoritative subscriber for mission state. All
// mutation happens inside HandleEvent under one lock; accessors return deep
// copies so readers never observe a half-applied update.
type Tracker struct {
	logger   *slog.Logger
	archiver Archiver

	mu                      sync.Mutex
	active                  []*model.Mission
	history                 []*model.Mission
	pendingFocusObjectiveID string
	completed               int
	failed                  int

	metricsOnce sync.Once
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithArchiver persists every mission that reaches a terminal state.
func WithArchiver(a Archiver) Option {
	return func(t *Tracker) { t.archiver = a }
}

func New(logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{logger: logger.With("component", "contracts")}
	for _, opt := range opts {
		opt(t)
	}
	t.registerMetrics()
	return t
}

// registerMetrics registers observable OTEL gauges for mission state. The
// global meter provider must be initialized before the Tracker is built.
func (t *Tracker) registerMetrics() {
	t.metricsOnce.Do(func() {
		meter := telemetry.Meter("starwatch/contracts")

		_, _ = meter.Int64ObservableGauge("starwatch.contracts.active",
			metric.WithDescription("Missions currently in the active collection"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				t.mu.Lock()
				n := len(t.active)
				t.mu.Unlock()
				o.Observe(int64(n))
				return nil
			}),
		)

		_, _ = meter.Int64ObservableGauge("starwatch.contracts.completed",
			metric.WithDescription("Missions ended successfully this session"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				t.mu.Lock()
				n := t.completed
				t.mu.Unlock()
				o.Observe(int64(n))
				return nil
			}),
		)

		_, _ = meter.Int64ObservableGauge("starwatch.contracts.failed",
			metric.WithDescription("Missions ended in failure or abandonment this session"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				t.mu.Lock()
				n := t.failed
				t.mu.Unlock()
				o.Observe(int64(n))
				return nil
			}),
		)
	})
}

// HandleEvent is the bus subscription entry point. Silent events are
// unwrapped: replayed history still drives the state machine, it just is not
// shown anywhere.
func (t *Tracker) HandleEvent(ev model.Event) {
	ev, _ = model.Unwrap(ev)

	switch e := ev.(type) {
	case model.MissionAccepted:
		t.onAccepted(e)
	case model.ObjectiveUpdate:
		t.onObjectiveUpdate(e)
	case model.MissionEnded:
		t.onEnded(e)
	case model.SessionStart:
		t.reset()
	}
}

func (t *Tracker) onAccepted(e model.MissionAccepted) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if m := t.findActiveLocked(e.MissionID); m != nil {
		// Repeated acceptance lines are common in the log. Refresh the name
		// if we only had a technical one, and re-assert tracking focus.
		t.upgradeNameLocked(m, e.ContractName)
		t.promoteFollowedLocked(m)
		return
	}

	m := model.NewMission(e.MissionID, FormatName(e.ContractName), e.Time())
	t.active = append([]*model.Mission{m}, t.active...)
	t.promoteFollowedLocked(m)
	t.logger.Info("contract accepted", "mission_id", m.ID, "name", m.Name)
}

func (t *Tracker) onObjectiveUpdate(e model.ObjectiveUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var m *model.Mission
	if e.MissionID != "" {
		m = t.findActiveLocked(e.MissionID)
		if m == nil {
			return
		}
	} else {
		m = t.findByObjectiveLocked(e.ObjectiveID)
		if m == nil {
			// An id-less update for an objective we have never seen: remember
			// it so the mission can be focused once an id arrives. Only one
			// such update is assumed in flight at a time.
			t.pendingFocusObjectiveID = e.ObjectiveID
			return
		}
	}

	text := strings.TrimSpace(e.Text)
	valid := text != "" && !strings.Contains(text, "~")

	// A focus signal or any update with usable text re-asserts tracking on
	// the owning mission. The pending slot is consumed only by the signal.
	focus := e.MissionID == "" ||
		(e.ObjectiveID != "" && strings.EqualFold(e.ObjectiveID, t.pendingFocusObjectiveID))
	if focus || valid {
		t.promoteFollowedLocked(m)
	}
	if focus {
		t.pendingFocusObjectiveID = ""
	}

	var clean string
	if valid {
		clean = strings.TrimRight(strings.ToUpper(text), ": \t")
		if !isPlaceholderText(clean) {
			m.CurrentObjectiveText = clean
		}
	}

	var obj *model.Objective
	if e.ObjectiveID != "" {
		obj = m.FindObjective(e.ObjectiveID)
	}
	if obj == nil && valid {
		// Duplicate lines for one objective sometimes differ only in whether
		// they carry an id. Collapse them by normalized text, backfilling the
		// id when we finally learn it.
		for _, o := range m.Objectives {
			if strings.EqualFold(o.Text, clean) {
				obj = o
				if obj.ID == "" {
					obj.ID = e.ObjectiveID
				}
				break
			}
		}
	}

	switch {
	case obj == nil && valid:
		m.Objectives = append(m.Objectives, &model.Objective{
			ID:     e.ObjectiveID,
			Text:   clean,
			Status: e.State,
		})
	case obj != nil:
		if valid {
			obj.Text = clean
		}
		if e.State != model.ObjectiveTracked && e.State != model.ObjectiveUntracked {
			obj.Status = e.State
		}
	}
}

func (t *Tracker) onEnded(e model.MissionEnded) {
	t.mu.Lock()

	if t.findHistoryLocked(e.MissionID) != nil {
		t.mu.Unlock()
		return
	}

	m := t.removeActiveLocked(e.MissionID)
	if m == nil {
		m = model.NewMission(e.MissionID, model.UnknownContractName, e.Time())
	}
	m.IsFollowed = false

	raw := strings.ToUpper(e.RawState)
	if strings.Contains(raw, "COMPLETED") || strings.Contains(raw, "SUCCEEDED") {
		m.Status = model.MissionSuccess
		t.completed++
	} else {
		m.Status = model.MissionFailed
		t.failed++
	}
	t.history = append([]*model.Mission{m}, t.history...)
	archived := m.Clone()
	t.mu.Unlock()

	t.logger.Info("contract ended", "mission_id", m.ID, "name", m.Name, "status", m.Status)

	if t.archiver != nil {
		if err := t.archiver.ArchiveMission(archived); err != nil {
			t.logger.Warn("archive mission failed", "mission_id", archived.ID, "error", err)
		}
	}
}

// reset clears everything for a fresh game session.
func (t *Tracker) reset() {
	t.mu.Lock()
	t.active = nil
	t.history = nil
	t.pendingFocusObjectiveID = ""
	t.completed = 0
	t.failed = 0
	t.mu.Unlock()
	t.logger.Info("session started, contract state cleared")
}

// promoteFollowedLocked makes target the single followed mission. Every other
// followed mission drops back to ACCEPTED; if anything changed, target moves
// to the front of the active ordering.
func (t *Tracker) promoteFollowedLocked(target *model.Mission) {
	changed := false
	for _, m := range t.active {
		if m != target && m.IsFollowed {
			m.IsFollowed = false
			m.Status = model.MissionAcceptedStatus
			changed = true
		}
	}
	if !target.IsFollowed || target.Status != model.MissionTracking {
		target.IsFollowed = true
		target.Status = model.MissionTracking
		changed = true
	}
	if changed {
		t.moveToFrontLocked(target)
	}
}

// upgradeNameLocked replaces a technical or synthesized name with a formatted
// one. A technical name is never replaced by another technical name.
func (t *Tracker) upgradeNameLocked(m *model.Mission, raw string) {
	if m.Name != model.UnknownContractName && !isTechnicalName(m.Name) {
		return
	}
	candidate := FormatName(raw)
	if candidate != model.UnknownContractName && !isTechnicalName(candidate) {
		m.Name = candidate
	}
}

func (t *Tracker) findActiveLocked(id string) *model.Mission {
	for _, m := range t.active {
		if m.SameID(id) {
			return m
		}
	}
	return nil
}

func (t *Tracker) findHistoryLocked(id string) *model.Mission {
	for _, m := range t.history {
		if m.SameID(id) {
			return m
		}
	}
	return nil
}

func (t *Tracker) findByObjectiveLocked(objectiveID string) *model.Mission {
	if objectiveID == "" {
		return nil
	}
	for _, m := range t.active {
		if m.FindObjective(objectiveID) != nil {
			return m
		}
	}
	return nil
}

func (t *Tracker) removeActiveLocked(id string) *model.Mission {
	for i, m := range t.active {
		if m.SameID(id) {
			t.active = append(t.active[:i], t.active[i+1:]...)
			return m
		}
	}
	return nil
}

func (t *Tracker) moveToFrontLocked(target *model.Mission) {
	for i, m := range t.active {
		if m == target {
			if i > 0 {
				copy(t.active[1:i+1], t.active[:i])
				t.active[0] = target
			}
			return
		}
	}
}

func isPlaceholderText(text string) bool {
	switch text {
	case "ACTIVE", "INITIALIZING", "WAITING FOR DATA":
		return true
	}
	return false
}

// Active returns the active missions, most recently focused first.
func (t *Tracker) Active() []*model.Mission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneMissions(t.active)
}

// History returns ended missions, most recent first.
func (t *Tracker) History() []*model.Mission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneMissions(t.history)
}

// Followed returns the currently followed mission, or nil.
func (t *Tracker) Followed() *model.Mission {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, m := range t.active {
		if m.IsFollowed {
			return m.Clone()
		}
	}
	return nil
}

// Counters returns the number of active, completed, and failed missions.
func (t *Tracker) Counters() (active, completed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active), t.completed, t.failed
}

func cloneMissions(in []*model.Mission) []*model.Mission {
	out := make([]*model.Mission, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}
