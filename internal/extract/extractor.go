// Package extract turns raw log lines into typed domain events. An Extractor
// holds an ordered registry of built-in processors plus a hot-swappable set
// of user-authored dynamic rules evaluated after all built-ins.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/starwatch-app/starwatch/internal/model"
)

// Processor recognizes one domain concept in a line. CanProcess is a cheap
// substring pre-filter guarding the regex work in Process. Implementations
// are stateless unless a single logical record spans multiple lines, in
// which case a processor may buffer one pending partial value.
type Processor interface {
	// CanProcess reports whether the line is worth handing to Process.
	CanProcess(line string) bool
	// Process applies the processor's patterns and returns zero or more
	// events. ts is the line's parsed timestamp.
	Process(line string, ts time.Time) []model.Event
}

// LocationResolver maps opaque location identifiers to display names.
type LocationResolver interface {
	LocationName(id string) (string, bool)
}

// compiledRule pairs a dynamic rule with its compiled pattern. A snapshot of
// these is swapped atomically so readers never see a partial rule set.
type compiledRule struct {
	rule model.DynamicRule
	re   *regexp.Regexp
}

// Extractor is the matcher registry. Safe for concurrent use: built-ins are
// registered once at construction and dynamic rules are replaced by atomic
// snapshot swap.
type Extractor struct {
	logger     *slog.Logger
	processors []Processor
	rules      atomic.Pointer[[]compiledRule]
}

// New builds an extractor with the full built-in processor table in its
// registration order. locations resolves location IDs for the location
// processor; it may be nil when no mapping is available.
func New(logger *slog.Logger, locations LocationResolver) *Extractor {
	e := &Extractor{
		logger: logger,
		processors: []Processor{
			&characterStatusProcessor{},
			&buildInfoProcessor{},
			&jurisdictionProcessor{},
			&armisticeProcessor{},
			&sessionUptimeProcessor{},
			&killProcessor{},
			&vehicleProcessor{},
			&locationProcessor{resolver: locations},
			&medicalProcessor{},
			&quantumProcessor{},
			&deathSpawnProcessor{},
			&missionProcessor{},
			&heartbeatProcessor{},
			&hardwareProcessor{},
			&networkProcessor{},
			&sessionStartProcessor{},
		},
	}
	e.rules.Store(&[]compiledRule{})
	return e
}

// SetRules atomically replaces the dynamic rule set. Rules with an empty or
// invalid pattern are skipped; the swap always succeeds with whatever
// compiled.
func (e *Extractor) SetRules(rules []model.DynamicRule) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.Regex == "" {
			continue
		}
		re, err := regexp.Compile(r.Regex)
		if err != nil {
			e.logger.Warn("extract: skipping dynamic rule with invalid pattern",
				"rule_id", r.ID, "rule_name", r.Name, "error", err)
			continue
		}
		compiled = append(compiled, compiledRule{rule: r, re: re})
	}
	e.rules.Store(&compiled)
}

// Rules returns the dynamic rules currently in effect.
func (e *Extractor) Rules() []model.DynamicRule {
	compiled := *e.rules.Load()
	rules := make([]model.DynamicRule, len(compiled))
	for i, c := range compiled {
		rules[i] = c.rule
	}
	return rules
}

// Extract runs the line through every processor and dynamic rule, in
// registration order with built-ins first. A failing processor or rule is
// skipped; a single bad line or bad rule never aborts extraction.
func (e *Extractor) Extract(line string) []model.Event {
	ts := ParseTimestamp(line)

	var events []model.Event
	for _, p := range e.processors {
		if !p.CanProcess(line) {
			continue
		}
		events = append(events, e.process(p, line, ts)...)
	}

	for _, c := range *e.rules.Load() {
		groups := c.re.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		events = append(events, model.DynamicMatch{
			Stamp:  model.At(ts),
			Rule:   c.rule,
			Groups: groups,
		})
	}
	return events
}

// process isolates a single processor so a panic inside one matcher cannot
// take down the line or the ingestion loop.
func (e *Extractor) process(p Processor, line string, ts time.Time) (events []model.Event) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("extract: processor panicked, skipping",
				"processor", fmt.Sprintf("%T", p), "error", r)
			events = nil
		}
	}()
	return p.Process(line, ts)
}
