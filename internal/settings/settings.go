// Package settings persists user preferences, custom extraction rules, and
// the location id mapping as JSON files under one base directory, and watches
// the rule file so edits apply without a restart.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/starwatch-app/starwatch/internal/model"
)

const (
	settingsFile  = "settings.json"
	rulesFile     = "custom_processors.json"
	locationsFile = "locations.json"
)

// fileSettings is the persisted shape of settings.json. Field names match the
// historical on-disk format.
type fileSettings struct {
	LastLogPath       string `json:"LastLogPath"`
	ReadFromBeginning bool   `json:"ReadFromBeginning"`
	ShowReplayedLogs  bool   `json:"ShowReplayedLogs"`
}

// fileLocations is the persisted shape of locations.json.
type fileLocations struct {
	StationMapping map[string]string `json:"STATION_MAPPING"`
}

// Provider loads and saves the three settings files. All getters and setters
// are safe for concurrent use; Save writes what is currently in memory.
type Provider struct {
	logger  *slog.Logger
	baseDir string

	mu             sync.RWMutex
	logPath        string
	fromBeginning  bool
	showReplayed   bool
	customRules    []model.DynamicRule
	locations      map[string]string
	onRulesChanged func([]model.DynamicRule)
}

// New loads settings from baseDir, creating the directory and default files
// on first run.
func New(logger *slog.Logger, baseDir string) (*Provider, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("settings: create base dir: %w", err)
	}
	p := &Provider{
		logger:  logger.With("component", "settings"),
		baseDir: baseDir,
	}
	if err := p.Load(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads all three files, writing defaults for any that are missing.
func (p *Provider) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	settingsPath := filepath.Join(p.baseDir, settingsFile)
	raw, err := os.ReadFile(settingsPath)
	switch {
	case err == nil:
		var fs fileSettings
		if err := json.Unmarshal(raw, &fs); err != nil {
			return fmt.Errorf("settings: parse %s: %w", settingsFile, err)
		}
		p.logPath = fs.LastLogPath
		p.fromBeginning = fs.ReadFromBeginning
		p.showReplayed = fs.ShowReplayedLogs
	case os.IsNotExist(err):
		// First run: full replay with visible history gives the richest
		// initial picture. Only settings.json is created here; a user rules
		// file that already exists must survive untouched.
		p.fromBeginning = true
		p.showReplayed = true
		if err := p.saveSettingsLocked(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("settings: read %s: %w", settingsFile, err)
	}

	if err := p.loadRulesLocked(); err != nil {
		return err
	}

	locationsPath := filepath.Join(p.baseDir, locationsFile)
	raw, err = os.ReadFile(locationsPath)
	switch {
	case err == nil:
		var fl fileLocations
		if err := json.Unmarshal(raw, &fl); err != nil {
			return fmt.Errorf("settings: parse %s: %w", locationsFile, err)
		}
		p.locations = fl.StationMapping
	case os.IsNotExist(err):
		p.locations = nil
	default:
		return fmt.Errorf("settings: read %s: %w", locationsFile, err)
	}

	p.logger.Debug("settings loaded",
		"base_dir", p.baseDir,
		"custom_rules", len(p.customRules),
		"locations", len(p.locations),
	)
	return nil
}

func (p *Provider) loadRulesLocked() error {
	rulesPath := filepath.Join(p.baseDir, rulesFile)
	raw, err := os.ReadFile(rulesPath)
	switch {
	case err == nil:
		var rules []model.DynamicRule
		if err := json.Unmarshal(raw, &rules); err != nil {
			return fmt.Errorf("settings: parse %s: %w", rulesFile, err)
		}
		// Anything loaded from the user file is user-authored.
		for i := range rules {
			rules[i].IsBuiltIn = false
		}
		p.customRules = rules
	case os.IsNotExist(err):
		p.customRules = nil
		if err := os.WriteFile(rulesPath, []byte("[]"), 0o644); err != nil {
			return fmt.Errorf("settings: write default %s: %w", rulesFile, err)
		}
	default:
		return fmt.Errorf("settings: read %s: %w", rulesFile, err)
	}
	return nil
}

// Save writes settings.json and the custom rule file.
func (p *Provider) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saveLocked()
}

func (p *Provider) saveLocked() error {
	if err := p.saveSettingsLocked(); err != nil {
		return err
	}

	rules := p.customRules
	if rules == nil {
		rules = []model.DynamicRule{}
	}
	raw, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal %s: %w", rulesFile, err)
	}
	if err := os.WriteFile(filepath.Join(p.baseDir, rulesFile), raw, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", rulesFile, err)
	}
	return nil
}

func (p *Provider) saveSettingsLocked() error {
	fs := fileSettings{
		LastLogPath:       p.logPath,
		ReadFromBeginning: p.fromBeginning,
		ShowReplayedLogs:  p.showReplayed,
	}
	raw, err := json.MarshalIndent(fs, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal %s: %w", settingsFile, err)
	}
	if err := os.WriteFile(filepath.Join(p.baseDir, settingsFile), raw, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", settingsFile, err)
	}
	return nil
}

// BaseDir returns the directory holding the settings files.
func (p *Provider) BaseDir() string { return p.baseDir }

func (p *Provider) LogPath() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.logPath
}

func (p *Provider) SetLogPath(path string) {
	p.mu.Lock()
	p.logPath = path
	p.mu.Unlock()
}

func (p *Provider) ReadFromBeginning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fromBeginning
}

func (p *Provider) SetReadFromBeginning(v bool) {
	p.mu.Lock()
	p.fromBeginning = v
	p.mu.Unlock()
}

// ShowReplayedLogs reports whether replayed events should surface like live
// ones. It satisfies the monitor's replay visibility check.
func (p *Provider) ShowReplayedLogs() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.showReplayed
}

func (p *Provider) SetShowReplayedLogs(v bool) {
	p.mu.Lock()
	p.showReplayed = v
	p.mu.Unlock()
}

// CustomRules returns a copy of the user-authored extraction rules.
func (p *Provider) CustomRules() []model.DynamicRule {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.DynamicRule(nil), p.customRules...)
}

// SetCustomRules replaces the rule set in memory. Call Save to persist.
func (p *Provider) SetCustomRules(rules []model.DynamicRule) {
	p.mu.Lock()
	p.customRules = append([]model.DynamicRule(nil), rules...)
	p.mu.Unlock()
}

// LocationName resolves a raw location id to its friendly station name.
func (p *Provider) LocationName(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	name, ok := p.locations[id]
	return name, ok
}

// OnRulesChanged registers a callback invoked with the fresh rule set after
// the watcher reloads the rule file. Register before Watch.
func (p *Provider) OnRulesChanged(fn func([]model.DynamicRule)) {
	p.mu.Lock()
	p.onRulesChanged = fn
	p.mu.Unlock()
}
