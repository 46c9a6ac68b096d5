package settings

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starwatch-app/starwatch/internal/model"
)

// debounce absorbs the burst of write events editors emit for one save.
const watchDebounce = 500 * time.Millisecond

// Watch reloads the custom rule file whenever it changes on disk and invokes
// the registered callback with the fresh rule set. It blocks until ctx is
// cancelled.
func (p *Provider) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("settings: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.baseDir); err != nil {
		return fmt.Errorf("settings: watch %s: %w", p.baseDir, err)
	}
	p.logger.Info("watching for rule changes", "dir", p.baseDir)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != rulesFile {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			// Editors save in bursts; coalesce them into one reload.
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			p.reloadRules()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("rule watcher error", "error", err)
		}
	}
}

func (p *Provider) reloadRules() {
	p.mu.Lock()
	if err := p.loadRulesLocked(); err != nil {
		p.mu.Unlock()
		p.logger.Warn("rule reload failed", "error", err)
		return
	}
	rules := append([]model.DynamicRule(nil), p.customRules...)
	fn := p.onRulesChanged
	p.mu.Unlock()

	p.logger.Info("custom rules reloaded", "count", len(rules))
	if fn != nil {
		fn(rules)
	}
}
