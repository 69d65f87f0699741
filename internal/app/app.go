// Package app wires configuration, transports, the plugin registry and
// the reconciliation engine into a runnable application, and drives the
// plan, apply and history commands.
package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/olusolaa/anypoint-reconciler/internal/adapters/journal/sqlite"
	"github.com/olusolaa/anypoint-reconciler/internal/config"
	"github.com/olusolaa/anypoint-reconciler/internal/core/domain"
	"github.com/olusolaa/anypoint-reconciler/internal/core/ports"
	"github.com/olusolaa/anypoint-reconciler/internal/errors"
	"github.com/olusolaa/anypoint-reconciler/internal/manifest"
)

// debounce window for manifest change events: editors write, rename and
// chmod in bursts, and one re-apply per burst is enough.
const watchDebounce = 500 * time.Millisecond

type Application struct {
	Config       *config.Config
	Logger       ports.Logger
	Engine       ports.ReconcileEngine
	Reporter     ports.Reporter
	ManifestPath string

	journal *sqlite.Store
}

func (a *Application) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// RunPlan loads the manifest, computes pending actions without mutating
// anything and reports them.
func (a *Application) RunPlan(ctx context.Context) (domain.RunReport, error) {
	blocks, err := manifest.Load(a.ManifestPath)
	if err != nil {
		return domain.RunReport{}, err
	}
	report, err := a.Engine.Plan(ctx, blocks)
	if err != nil {
		return report, err
	}
	return report, a.Reporter.Report(ctx, report)
}

// RunApply loads the manifest and reconciles every declared resource.
func (a *Application) RunApply(ctx context.Context) (domain.RunReport, error) {
	blocks, err := manifest.Load(a.ManifestPath)
	if err != nil {
		return domain.RunReport{}, err
	}
	report, err := a.Engine.Apply(ctx, blocks)
	if err != nil {
		return report, err
	}
	return report, a.Reporter.Report(ctx, report)
}

// WatchApply applies once, then re-applies whenever the manifest file
// changes on disk, until ctx is cancelled. Failures of individual runs
// are logged and the watch continues; only a broken watcher ends it.
func (a *Application) WatchApply(ctx context.Context) error {
	if _, err := a.RunApply(ctx); err != nil {
		a.Logger.Errorf(ctx, err, "Apply failed, watching for manifest changes")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "starting the manifest watcher")
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors replace files
	// by rename, which drops a watch placed on the file itself.
	target := filepath.Clean(a.ManifestPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, errors.CodeInternal, "watching %s", filepath.Dir(target))
	}
	a.Logger.Infof(ctx, "Watching %s for changes", target)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			a.Logger.Infof(ctx, "Watch stopped")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.Logger.Warnf(ctx, "Manifest watcher error: %v", werr)
		case <-timerC:
			timer = nil
			timerC = nil
			a.Logger.Infof(ctx, "Manifest changed, re-applying")
			if _, err := a.RunApply(ctx); err != nil {
				a.Logger.Errorf(ctx, err, "Apply failed, continuing to watch")
			}
		}
	}
}
