package refresh

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/LerianStudio/lib-commons/commons/log"
	"github.com/fsnotify/fsnotify"
)

// Validator defines the interface for license revalidation
type Validator interface {
	Revalidate(ctx context.Context) error
}

// Manager handles background revalidation of the license, on a ticker and
// whenever the watched license file changes on disk
type Manager struct {
	refreshInterval       time.Duration
	watchPath             string
	started               bool
	mu                    sync.Mutex
	cancel                context.CancelFunc
	done                  chan struct{}
	validator             Validator
	logger                log.Logger
	lastAttemptedRefresh  time.Time
	lastSuccessfulRefresh time.Time
}

// New creates a new background refresh manager. A non-positive interval disables the ticker.
func New(validator Validator, refreshInterval time.Duration, logger log.Logger) *Manager {
	return &Manager{
		validator:       validator,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// Watch revalidates whenever path is written, created, removed or renamed.
// It must be called before Start.
func (m *Manager) Watch(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.watchPath = path
}

// Start begins the background refresh process
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}

	watcher := m.newWatcher()
	if m.refreshInterval <= 0 && watcher == nil {
		m.logger.Info("Background license refresh disabled")
		return
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.started = true

	var tick <-chan time.Time

	var ticker *time.Ticker
	if m.refreshInterval > 0 {
		ticker = time.NewTicker(m.refreshInterval)
		tick = ticker.C
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)

	if watcher != nil {
		events = watcher.Events
		errs = watcher.Errors
	}

	go func() {
		defer close(m.done)

		defer func() {
			if ticker != nil {
				ticker.Stop()
			}

			if watcher != nil {
				_ = watcher.Close()
			}
		}()

		m.logger.Info("Starting background license refresh")

		for {
			select {
			case <-refreshCtx.Done():
				m.logger.Info("Background license refresh stopped")
				return

			case <-tick:
				m.logger.Info("Running scheduled license validation")
				m.attemptValidation(refreshCtx)

			case event, ok := <-events:
				if !ok {
					events = nil
					continue
				}

				if !m.affectsLicense(event) {
					continue
				}

				m.logger.Infof("License file changed (%s), revalidating", event.Op)
				m.attemptValidation(refreshCtx)

			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}

				m.logger.Warnf("License file watcher error: %v", err)
			}
		}
	}()
}

// newWatcher watches the directory of the license file so that editors
// replacing the file through a rename are still seen. Caller holds m.mu.
func (m *Manager) newWatcher() *fsnotify.Watcher {
	if m.watchPath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.logger.Warnf("Could not create license file watcher: %v", err)
		return nil
	}

	if err := watcher.Add(filepath.Dir(m.watchPath)); err != nil {
		m.logger.Warnf("Could not watch license file %s: %v", m.watchPath, err)
		_ = watcher.Close()

		return nil
	}

	return watcher
}

func (m *Manager) affectsLicense(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(m.watchPath) {
		return false
	}

	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// Shutdown stops the background refresh process and waits for it to exit.
// It must not be called from a Validator; use Stop there.
func (m *Manager) Shutdown() {
	done := m.stop()
	if done == nil {
		return
	}

	<-done
	m.logger.Info("Background license refresh shutdown complete")
}

// Stop cancels the background refresh process without waiting for it.
func (m *Manager) Stop() {
	m.stop()
}

func (m *Manager) stop() chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	m.started = false

	return m.done
}

// LastRefresh returns the time of the last attempted and the last successful revalidation.
func (m *Manager) LastRefresh() (attempted, successful time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastAttemptedRefresh, m.lastSuccessfulRefresh
}

// attemptValidation runs a single revalidation
func (m *Manager) attemptValidation(ctx context.Context) {
	m.mu.Lock()
	m.lastAttemptedRefresh = time.Now()
	m.mu.Unlock()

	err := m.validator.Revalidate(ctx)
	if err != nil {
		m.logger.Errorf("License revalidation failed: %v", err)
		return
	}

	m.mu.Lock()
	m.lastSuccessfulRefresh = time.Now()
	m.mu.Unlock()

	m.logger.Info("License revalidation successful")
}
