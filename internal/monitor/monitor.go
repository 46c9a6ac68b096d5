// Package monitor drives log ingestion: a producer goroutine tails the game
// log file and feeds extracted events into two queues (historical replay and
// live), and a consumer goroutine drains them with strict replay-first
// priority before publishing onto the event bus.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/starwatch-app/starwatch/internal/bus"
	"github.com/starwatch-app/starwatch/internal/extract"
	"github.com/starwatch-app/starwatch/internal/model"
	"github.com/starwatch-app/starwatch/internal/telemetry"
)

const (
	livePollInterval = 250 * time.Millisecond
	idlePollInterval = 50 * time.Millisecond
	stopJoinTimeout  = 1 * time.Second
)

// State describes where the ingestion engine is in its lifecycle.
type State int32

const (
	StateStopped State = iota
	StateStarting
	StateCatchingUp
	StateLive
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateCatchingUp:
		return "catching_up"
	case StateLive:
		return "live"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ReplayVisibility reports whether replayed (historical) events should be
// surfaced like live ones. The consumer reads it at dequeue time, so flipping
// the setting mid-replay affects events not yet drained.
type ReplayVisibility interface {
	ShowReplayedLogs() bool
}

// Monitor tails a single append-only log file and turns its lines into
// published events. Create with New, then Start/Stop as the target file
// changes. A Monitor is safe for concurrent use.
type Monitor struct {
	logger     *slog.Logger
	bus        *bus.Bus
	extractor  *extract.Extractor
	visibility ReplayVisibility

	onEvent   func(model.Event)
	onRawLine func(string)

	replayQ eventQueue
	liveQ   eventQueue

	state          atomic.Int32
	catchUpPct     atomic.Int64
	processedLines atomic.Int64

	mu      sync.Mutex // guards cancel/done/runErr across Start/Stop
	cancel  context.CancelFunc
	done    chan struct{}
	runErr  error
	faulted atomic.Bool

	metricsOnce sync.Once
}

// New builds a Monitor publishing onto b. visibility may be nil, in which
// case replayed events are always wrapped as silent.
func New(logger *slog.Logger, b *bus.Bus, ex *extract.Extractor, visibility ReplayVisibility) *Monitor {
	return &Monitor{
		logger:     logger.With("component", "monitor"),
		bus:        b,
		extractor:  ex,
		visibility: visibility,
	}
}

// OnEvent registers a callback invoked for every published event, after the
// bus delivery. Register before Start.
func (m *Monitor) OnEvent(fn func(model.Event)) { m.onEvent = fn }

// OnRawLine registers a callback invoked with each raw log line while live,
// and during replay when replayed logs are visible. Register before Start.
func (m *Monitor) OnRawLine(fn func(string)) { m.onRawLine = fn }

// Start begins tailing path. When fromBeginning is true the whole existing
// file content is replayed before going live; otherwise ingestion starts at
// the current end of file. Calling Start while already running is a no-op.
// A file that cannot be opened fails the call and leaves the engine stopped;
// there is no automatic retry.
func (m *Monitor) Start(path string, fromBeginning bool) error {
	if !m.state.CompareAndSwap(int32(StateStopped), int32(StateStarting)) {
		m.logger.Debug("start ignored, already running", "path", path)
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		m.state.Store(int32(StateStopped))
		return fmt.Errorf("monitor: open log file: %w", err)
	}

	var totalAtStart int64
	if fi, err := f.Stat(); err == nil {
		totalAtStart = fi.Size()
	}
	if !fromBeginning {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			m.state.Store(int32(StateStopped))
			return fmt.Errorf("monitor: seek to end: %w", err)
		}
	}

	m.replayQ.Clear()
	m.liveQ.Clear()
	m.processedLines.Store(0)
	m.catchUpPct.Store(0)
	m.faulted.Store(false)

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.runErr = nil
	m.mu.Unlock()

	catchingUp := fromBeginning && totalAtStart > 0
	if catchingUp {
		m.state.Store(int32(StateCatchingUp))
	} else {
		m.catchUpPct.Store(100)
		m.state.Store(int32(StateLive))
	}

	m.registerMetrics()

	g.Go(func() error { return m.produce(gctx, f, totalAtStart) })
	g.Go(func() error { return m.consume(gctx) })

	go func() {
		err := g.Wait()
		f.Close()
		if err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("ingestion stopped unexpectedly", "error", err)
			m.mu.Lock()
			m.runErr = err
			m.mu.Unlock()
			m.faulted.Store(true)
		}
		m.catchUpPct.Store(0)
		m.state.Store(int32(StateStopped))
		close(done)
	}()

	m.logger.Info("ingestion started",
		"path", path,
		"from_beginning", fromBeginning,
		"bytes_at_start", totalAtStart,
	)
	return nil
}

// Stop cancels both loops and waits up to one second for them to exit. The
// file handle is released by the run supervisor regardless of whether the
// join completed in time. Stop on a stopped Monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(stopJoinTimeout):
		m.logger.Warn("ingestion loops did not stop in time")
	}
	m.logger.Info("ingestion stopped", "lines_processed", m.processedLines.Load())
}

// ProcessSingleLine runs one line through extraction and publishes the
// results synchronously, bypassing the queues. It works whether or not the
// engine is running.
func (m *Monitor) ProcessSingleLine(line string) {
	for _, ev := range m.extractor.Extract(line) {
		m.publish(ev)
	}
	if m.onRawLine != nil {
		m.onRawLine(line)
	}
}

// Running reports whether the engine is between Start and Stop.
func (m *Monitor) Running() bool { return State(m.state.Load()) != StateStopped }

// CurrentState returns the engine lifecycle state.
func (m *Monitor) CurrentState() State { return State(m.state.Load()) }

// CatchingUp reports whether historical content is still being replayed.
func (m *Monitor) CatchingUp() bool { return State(m.state.Load()) == StateCatchingUp }

// Progress returns catch-up progress as a percentage in [0,100]. It is
// monotonically non-decreasing within a run and reaches 100 when live.
func (m *Monitor) Progress() int { return int(m.catchUpPct.Load()) }

// ProcessedLines returns the number of lines consumed this run.
func (m *Monitor) ProcessedLines() int64 { return m.processedLines.Load() }

// Err returns the fatal error that ended the previous run, if any. A clean
// Stop leaves it nil. It is reset by the next Start.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runErr
}

// Faulted reports whether the engine stopped because of an I/O failure
// rather than an explicit Stop.
func (m *Monitor) Faulted() bool { return m.faulted.Load() }

// produce reads lines from f until cancelled. During catch-up every consumed
// line advances the progress percentage; the first poll that finds no new
// data flips the engine to live. A partial line at EOF is held back until its
// terminating newline arrives.
func (m *Monitor) produce(ctx context.Context, f *os.File, totalAtStart int64) error {
	reader := bufio.NewReader(f)
	var partial strings.Builder
	var consumed int64

	// One span covers the whole historical replay, ended at the live flip.
	var catchupSpan trace.Span
	if State(m.state.Load()) == StateCatchingUp {
		_, catchupSpan = telemetry.Tracer("starwatch/monitor").Start(ctx, "monitor.catchup",
			trace.WithAttributes(attribute.Int64("bytes_at_start", totalAtStart)))
		defer func() {
			if catchupSpan != nil {
				catchupSpan.End()
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := reader.ReadString('\n')
		if err == nil {
			consumed += int64(len(chunk))
			line := strings.TrimRight(partial.String()+chunk, "\r\n")
			partial.Reset()
			m.consumeLine(line, totalAtStart, consumed)
			continue
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("monitor: read log file: %w", err)
		}

		// EOF: hold any unterminated tail fragment for the next pass.
		partial.WriteString(chunk)

		if State(m.state.Load()) == StateCatchingUp {
			m.catchUpPct.Store(100)
			m.state.Store(int32(StateLive))
			m.logger.Info("catch-up complete, now live", "lines_replayed", m.processedLines.Load())
			if catchupSpan != nil {
				catchupSpan.SetAttributes(attribute.Int64("lines_replayed", m.processedLines.Load()))
				catchupSpan.End()
				catchupSpan = nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(livePollInterval):
		}
	}
}

func (m *Monitor) consumeLine(line string, totalAtStart, consumed int64) {
	m.processedLines.Add(1)
	replaying := State(m.state.Load()) == StateCatchingUp

	if replaying && totalAtStart > 0 {
		pct := consumed * 100 / totalAtStart
		if pct > 100 {
			pct = 100
		}
		// Monotone within a run: the file may grow while we replay.
		if pct > m.catchUpPct.Load() {
			m.catchUpPct.Store(pct)
		}
	}

	if line == "" {
		return
	}

	if m.onRawLine != nil {
		if !replaying || (m.visibility != nil && m.visibility.ShowReplayedLogs()) {
			m.onRawLine(line)
		}
	}

	events := m.extractor.Extract(line)
	for _, ev := range events {
		if replaying {
			m.replayQ.Enqueue(ev)
		} else {
			m.liveQ.Enqueue(ev)
		}
	}
}

// consume drains the queues, always exhausting replayed events before live
// ones. Replayed events are wrapped as silent unless the visibility setting
// says otherwise at the moment of dequeue.
func (m *Monitor) consume(ctx context.Context) error {
	for {
		if ev, ok := m.replayQ.Dequeue(); ok {
			if m.visibility == nil || !m.visibility.ShowReplayedLogs() {
				ev = model.Silent{Inner: ev}
			}
			m.publish(ev)
			continue
		}
		if ev, ok := m.liveQ.Dequeue(); ok {
			m.publish(ev)
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(idlePollInterval):
		}
	}
}

func (m *Monitor) publish(ev model.Event) {
	m.bus.Publish(ev)
	if m.onEvent != nil {
		m.onEvent(ev)
	}
}

// registerMetrics registers observable OTEL gauges for ingestion health
// monitoring. Called from Start() after the global meter provider has been
// initialized; registration happens once per Monitor.
func (m *Monitor) registerMetrics() {
	m.metricsOnce.Do(func() {
		meter := telemetry.Meter("starwatch/monitor")

		_, _ = meter.Int64ObservableGauge("starwatch.monitor.replay_queue_depth",
			metric.WithDescription("Events awaiting delivery from the historical replay queue"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(m.replayQ.Len()))
				return nil
			}),
		)

		_, _ = meter.Int64ObservableGauge("starwatch.monitor.live_queue_depth",
			metric.WithDescription("Events awaiting delivery from the live queue"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(m.liveQ.Len()))
				return nil
			}),
		)

		_, _ = meter.Int64ObservableGauge("starwatch.monitor.processed_lines",
			metric.WithDescription("Log lines consumed during the current run"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(m.processedLines.Load())
				return nil
			}),
		)

		_, _ = meter.Int64ObservableGauge("starwatch.monitor.catchup_progress",
			metric.WithDescription("Catch-up progress percentage, 100 when live"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(m.catchUpPct.Load())
				return nil
			}),
		)
	})
}
