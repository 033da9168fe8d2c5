package console

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"config-console/shared/models"

	"go.uber.org/zap"
)

// Backend is the pair of calls the page makes.
type Backend interface {
	ListConfigs(ctx context.Context) ([]models.ConfigurationRecord, error)
	PutConfig(ctx context.Context, name, value string) error
}

// Page holds one browser session's view of the configuration list and its
// edit dialog. All methods are safe for concurrent use; backend calls are made
// without holding the lock.
type Page struct {
	backend Backend
	acks    *AckRegistry
	policy  RefreshPolicy
	logger  *zap.Logger

	mu       sync.Mutex
	state    State
	mounted  bool
	lastUsed time.Time
}

// NewPage creates a page in its initial state: empty list, loading. acks may be nil.
func NewPage(backend Backend, acks *AckRegistry, policy RefreshPolicy, logger *zap.Logger) *Page {
	return &Page{
		backend:  backend,
		acks:     acks,
		policy:   policy.withDefaults(),
		logger:   logger.Named("ConsolePage"),
		state:    State{List: []models.ConfigurationRecord{}, Loading: true},
		lastUsed: time.Now(),
	}
}

// Snapshot returns a deep copy of the current state.
func (p *Page) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	s.List = models.CloneRecords(p.state.List)
	if p.state.Selected != nil {
		s.Selected = p.state.Selected.clone()
	}
	return s
}

// Rows renders the current list for locale.
func (p *Page) Rows(locale string) []Row {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Rows(p.state.List, locale)
}

// Mount loads the list the first time it is called; later calls do nothing.
func (p *Page) Mount(ctx context.Context) {
	p.mu.Lock()
	if p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = true
	p.mu.Unlock()

	_ = p.Search(ctx)
}

// Load reloads the list for a fresh view of the page and counts as the mount.
func (p *Page) Load(ctx context.Context) {
	p.mu.Lock()
	p.mounted = true
	p.mu.Unlock()

	_ = p.Search(ctx)
}

// Search reloads the list. On success the list is replaced and the dialog is
// closed; on failure the list is kept. Loading is cleared either way. The
// error is returned for callers that poll; the page itself never shows it.
func (p *Page) Search(ctx context.Context) error {
	p.mu.Lock()
	p.state.Loading = true
	p.mu.Unlock()

	records, err := p.backend.ListConfigs(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Loading = false
	if err != nil {
		p.logger.Warn("Failed to load configuration list", zap.Error(err))
		return err
	}
	if records == nil {
		records = []models.ConfigurationRecord{}
	}
	p.state.List = models.CloneRecords(records)
	p.state.DialogVisible = false
	p.state.Selected = nil
	return nil
}

// Open starts editing the record called name.
func (p *Page) Open(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.state.List {
		if r.Name == name {
			p.state.Selected = &Draft{Record: r.Clone()}
			p.state.DialogVisible = true
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrRecordNotFound, name)
}

// Edit sets the draft's new value. The record in the list is never touched.
func (p *Page) Edit(value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Selected == nil {
		return models.ErrDialogClosed
	}
	p.state.Selected.NewValue = &value
	return nil
}

// Close hides the dialog and drops the draft. A save already in flight still
// completes.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.DialogVisible = false
	p.state.Selected = nil
}

// Save writes the draft's value. An unmodified draft returns ErrNotModified
// without calling the backend. After a successful write the dialog closes and
// the list is refreshed until the new value is visible. A failed write leaves
// the dialog open with the draft intact.
func (p *Page) Save(ctx context.Context) error {
	p.mu.Lock()
	draft := p.state.Selected
	if draft == nil {
		p.mu.Unlock()
		return models.ErrDialogClosed
	}
	if !draft.Modified() {
		p.mu.Unlock()
		return models.ErrNotModified
	}
	name, value := draft.Record.Name, *draft.NewValue
	p.mu.Unlock()

	log := p.logger.With(zap.String("name", name))

	var ack *Ack
	if p.acks != nil {
		ack = p.acks.Expect(name, value)
	}

	if err := p.backend.PutConfig(ctx, name, value); err != nil {
		if ack != nil {
			ack.Cancel()
		}
		p.mu.Lock()
		p.state.Loading = false
		p.mu.Unlock()
		log.Error("Failed to save configuration", zap.Error(err))
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	log.Info("Configuration saved")

	p.mu.Lock()
	// another dialog may have been opened while the write was in flight
	if p.state.Selected == draft {
		p.state.DialogVisible = false
		p.state.Selected = nil
	}
	p.state.Loading = true
	p.mu.Unlock()

	// the refresh outlives an abandoned request
	p.refreshAfterSave(context.WithoutCancel(ctx), ack, name, value)
	return nil
}

// shows reports whether the list holds name with value.
func (p *Page) shows(name, value string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range p.state.List {
		if r.Name == name {
			return r.Value == value
		}
	}
	return false
}

func (p *Page) touch(now time.Time) {
	p.mu.Lock()
	p.lastUsed = now
	p.mu.Unlock()
}

func (p *Page) idleSince(now time.Time) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return now.Sub(p.lastUsed)
}

// IsUserError reports whether err should be shown to the operator as an alert
// rather than an error.
func IsUserError(err error) bool {
	return errors.Is(err, models.ErrNotModified) ||
		errors.Is(err, models.ErrDialogClosed) ||
		errors.Is(err, models.ErrRecordNotFound)
}
