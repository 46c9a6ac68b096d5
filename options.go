package starwatch

import (
	"log/slog"

	"github.com/starwatch-app/starwatch/internal/feed"
)

// Option configures an App.
type Option func(*resolvedOptions)

// resolvedOptions holds all extension points after applying defaults.
// Unexported; callers use the With* functions.
type resolvedOptions struct {
	logger            *slog.Logger
	version           string
	logPath           string
	dataDir           string
	databasePath      string
	disableArchive    bool
	readFromBeginning *bool
	showReplayedLogs  *bool
	feedHandlers      []func(feed.Entry)
	rawLineHandlers   []func(string)
}

// WithLogger sets the structured logger for the App.
// If not set, the default slog logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *resolvedOptions) { o.logger = logger }
}

// WithVersion sets the version string reported in logs and telemetry.
func WithVersion(version string) Option {
	return func(o *resolvedOptions) { o.version = version }
}

// WithLogPath overrides the game log path from config (STARWATCH_LOG_PATH)
// and the persisted settings.
func WithLogPath(path string) Option {
	return func(o *resolvedOptions) { o.logPath = path }
}

// WithDataDir overrides the settings/archive directory (STARWATCH_DATA_DIR).
func WithDataDir(dir string) Option {
	return func(o *resolvedOptions) { o.dataDir = dir }
}

// WithDatabasePath overrides the SQLite archive location (STARWATCH_DB_PATH).
func WithDatabasePath(path string) Option {
	return func(o *resolvedOptions) { o.databasePath = path }
}

// WithoutArchive disables the SQLite session archive entirely.
func WithoutArchive() Option {
	return func(o *resolvedOptions) { o.disableArchive = true }
}

// WithReadFromBeginning overrides whether the existing file content is
// replayed before going live.
func WithReadFromBeginning(v bool) Option {
	return func(o *resolvedOptions) { o.readFromBeginning = &v }
}

// WithShowReplayedLogs overrides whether replayed events surface like live
// ones.
func WithShowReplayedLogs(v bool) Option {
	return func(o *resolvedOptions) { o.showReplayedLogs = &v }
}

// WithFeedHandler registers a callback for every display-worthy feed entry.
// Multiple handlers may be registered; all receive every entry.
func WithFeedHandler(fn func(feed.Entry)) Option {
	return func(o *resolvedOptions) { o.feedHandlers = append(o.feedHandlers, fn) }
}

// WithRawLineHandler registers a callback for raw log lines (live lines, and
// replayed ones when replay visibility is on).
func WithRawLineHandler(fn func(string)) Option {
	return func(o *resolvedOptions) { o.rawLineHandlers = append(o.rawLineHandlers, fn) }
}
