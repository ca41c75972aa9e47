package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-promptform/pkg/config"
	"github.com/goliatone/go-promptform/pkg/snapshot"
)

// Status is the gateway state reported to the status handler.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusSaving   Status = "saving"
	StatusSaved    Status = "saved"
	StatusRestored Status = "restored"
	StatusDisabled Status = "disabled"
	StatusError    Status = "error"
)

// DefaultDelay is the debounce delay used when the config leaves it unset.
const DefaultDelay = 750 * time.Millisecond

// Meta accompanies a status change.
type Meta struct {
	Timestamp string
	Err       error
}

// StatusHandler observes status changes.
type StatusHandler func(Status, Meta)

// ErrorHandler observes storage and migration failures.
type ErrorHandler func(error)

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger. The default discards.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithScheduler replaces the time.AfterFunc scheduler.
func WithScheduler(s Scheduler) Option {
	return func(g *Gateway) {
		if s != nil {
			g.scheduler = s
		}
	}
}

// WithClock replaces time.Now for payload timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithDelay overrides the configured debounce delay.
func WithDelay(d time.Duration) Option {
	return func(g *Gateway) {
		if d >= 0 {
			g.delay = d
		}
	}
}

// WithStatusHandler registers fn for status changes.
func WithStatusHandler(fn StatusHandler) Option {
	return func(g *Gateway) {
		g.onStatus = fn
	}
}

// WithErrorHandler registers fn for failures.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(g *Gateway) {
		g.onError = fn
	}
}

// Gateway debounces snapshot saves into one storage key and restores them,
// running the configured migrator on schema mismatch.
type Gateway struct {
	storage       Storage
	key           string
	schemaVersion int
	historyLimit  int
	migrate       config.Migrator
	delay         time.Duration

	scheduler Scheduler
	now       func() time.Time
	logger    *zap.Logger
	onStatus  StatusHandler
	onError   ErrorHandler

	// ioMu serializes read-modify-write cycles on the key.
	ioMu sync.Mutex

	mu         sync.Mutex
	available  bool
	closed     bool
	status     Status
	pending    *snapshot.Snapshot
	task       Task
	generation uint64
}

// New builds a gateway over storage and checks it by writing and deleting
// "{key}__test". A failed check (or nil storage) disables the gateway.
func New(ctx context.Context, storage Storage, cfg config.StorageConfig, opts ...Option) *Gateway {
	g := &Gateway{
		storage:       storage,
		key:           cfg.Key,
		schemaVersion: cfg.SchemaVersion,
		historyLimit:  cfg.HistoryLimit,
		migrate:       cfg.Migrate,
		delay:         DefaultDelay,
		scheduler:     TimerScheduler{},
		now:           time.Now,
		logger:        zap.NewNop(),
		status:        StatusIdle,
	}
	if g.key == "" {
		g.key = "nanobana:state"
	}
	if g.schemaVersion <= 0 {
		g.schemaVersion = 1
	}
	if cfg.AutosaveDebounceMs > 0 {
		g.delay = time.Duration(cfg.AutosaveDebounceMs) * time.Millisecond
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	if err := g.checkStorage(ctx); err != nil {
		g.logger.Warn("autosave storage unavailable", zap.String("key", g.key), zap.Error(err))
		g.status = StatusDisabled
		g.emitError(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
		g.emitStatus(StatusDisabled, Meta{})
		return g
	}
	g.available = true
	return g
}

func (g *Gateway) checkStorage(ctx context.Context) error {
	if g.storage == nil {
		return errors.New("no storage configured")
	}
	testKey := g.key + "__test"
	if err := g.storage.Set(ctx, testKey, []byte("1")); err != nil {
		return err
	}
	return g.storage.Delete(ctx, testKey)
}

// Key returns the storage key.
func (g *Gateway) Key() string {
	return g.key
}

// SchemaVersion returns the schema version written into payloads.
func (g *Gateway) SchemaVersion() int {
	return g.schemaVersion
}

// Migrator returns the configured migrator, possibly nil.
func (g *Gateway) Migrator() config.Migrator {
	return g.migrate
}

// Available reports whether the startup check succeeded.
func (g *Gateway) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.available
}

// Status returns the last reported status.
func (g *Gateway) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Pending reports whether a snapshot is waiting for the debounce task.
func (g *Gateway) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending != nil
}

// QueueSave replaces the pending snapshot and re-arms the debounce task. Only
// the most recent snapshot within the delay is persisted.
func (g *Gateway) QueueSave(snap snapshot.Snapshot) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		g.logger.Debug("autosave closed, save dropped", zap.String("key", g.key))
		return
	}
	if !g.available {
		g.status = StatusDisabled
		g.mu.Unlock()
		g.emitError(fmt.Errorf("%w: autosave disabled", ErrStorageUnavailable))
		g.emitStatus(StatusDisabled, Meta{})
		return
	}

	copied := snap.Clone()
	g.pending = &copied
	if g.task != nil {
		g.task.Stop()
	}
	g.generation++
	generation := g.generation
	g.task = g.scheduler.AfterFunc(g.delay, func() {
		g.fire(generation)
	})
	g.status = StatusSaving
	g.mu.Unlock()

	g.emitStatus(StatusSaving, Meta{})
}

func (g *Gateway) fire(generation uint64) {
	g.mu.Lock()
	if generation != g.generation || g.pending == nil {
		g.mu.Unlock()
		return
	}
	pending := g.pending
	g.pending = nil
	g.task = nil
	g.mu.Unlock()

	_ = g.persist(context.Background(), *pending)
}

// Flush persists the pending snapshot now, if there is one.
func (g *Gateway) Flush(ctx context.Context) error {
	g.mu.Lock()
	if g.task != nil {
		g.task.Stop()
		g.task = nil
	}
	g.generation++
	pending := g.pending
	g.pending = nil
	g.mu.Unlock()

	if pending == nil {
		return nil
	}
	return g.persist(ctx, *pending)
}

// Cancel drops the pending snapshot without writing it.
func (g *Gateway) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.task != nil {
		g.task.Stop()
		g.task = nil
	}
	g.generation++
	g.pending = nil
}

// Report surfaces an error raised outside the gateway, such as a failed
// synthesis or import, through the error status.
func (g *Gateway) Report(err error) {
	if err == nil {
		return
	}
	g.fail(err)
}

// Close stops the debounce task and flushes. Later saves are dropped.
func (g *Gateway) Close(ctx context.Context) error {
	err := g.Flush(ctx)
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	return err
}

func (g *Gateway) persist(ctx context.Context, data snapshot.Snapshot) error {
	g.ioMu.Lock()
	defer g.ioMu.Unlock()

	timestamp := FormatTimestamp(g.now())

	var history []HistoryEntry
	existing, err := g.storage.Get(ctx, g.key)
	switch {
	case err == nil:
		if payload, decodeErr := DecodePayload(existing); decodeErr == nil {
			history = payload.History
		} else {
			g.logger.Warn("autosave existing payload unreadable, history reset", zap.String("key", g.key), zap.Error(decodeErr))
		}
	case errors.Is(err, ErrNotFound):
	default:
		return g.fail(&IOError{Op: "read", Key: g.key, Err: err})
	}

	payload := Payload{
		SchemaVersion: g.schemaVersion,
		Timestamp:     timestamp,
		Data:          &data,
		History:       appendHistory(history, HistoryEntry{Timestamp: timestamp, Data: &data}, g.historyLimit),
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return g.fail(&IOError{Op: "encode", Key: g.key, Err: err})
	}
	if err := g.storage.Set(ctx, g.key, encoded); err != nil {
		return g.fail(&IOError{Op: "write", Key: g.key, Err: err})
	}

	g.setStatus(StatusSaved)
	g.logger.Debug("autosave persisted",
		zap.String("key", g.key),
		zap.String("timestamp", timestamp),
		zap.Int("history", len(payload.History)),
	)
	g.emitStatus(StatusSaved, Meta{Timestamp: timestamp})
	return nil
}

// Load reads the stored payload. A payload with the current schema version
// is returned as is. Any other version goes through the migrator and is
// accepted only when the result carries data. Load returns nil, nil when
// nothing restorable is stored.
func (g *Gateway) Load(ctx context.Context) (*Restored, error) {
	if !g.Available() {
		return nil, ErrStorageUnavailable
	}

	g.ioMu.Lock()
	raw, err := g.storage.Get(ctx, g.key)
	g.ioMu.Unlock()
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, g.fail(&IOError{Op: "read", Key: g.key, Err: err})
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, g.fail(&IOError{Op: "decode", Key: g.key, Err: err})
	}
	if generic == nil {
		return nil, nil
	}

	version := schemaOf(generic)
	if version == g.schemaVersion {
		payload, err := DecodePayload(raw)
		if err != nil {
			return nil, g.fail(&IOError{Op: "decode", Key: g.key, Err: err})
		}
		return restoredFrom(payload), nil
	}

	if g.migrate == nil {
		g.logger.Warn("autosave schema mismatch without migrator",
			zap.Int("stored", version), zap.Int("current", g.schemaVersion))
		return nil, nil
	}
	migrated, err := g.migrate(generic, g.schemaVersion)
	if err != nil {
		return nil, g.fail(&MigrationError{From: version, To: g.schemaVersion, Err: err})
	}
	if migrated == nil || migrated["data"] == nil {
		g.logger.Warn("autosave migration produced no data",
			zap.Int("stored", version), zap.Int("current", g.schemaVersion))
		return nil, nil
	}
	payload, err := PayloadFromMap(migrated)
	if err != nil {
		return nil, g.fail(&MigrationError{From: version, To: g.schemaVersion, Err: err})
	}
	return restoredFrom(payload), nil
}

func restoredFrom(payload Payload) *Restored {
	if payload.Data == nil {
		return nil
	}
	history := payload.History
	if history == nil {
		history = []HistoryEntry{}
	}
	return &Restored{Data: *payload.Data, Timestamp: payload.Timestamp, History: history}
}

// MarkRestored reports that the controller applied a restored snapshot.
func (g *Gateway) MarkRestored(timestamp string) {
	g.setStatus(StatusRestored)
	g.emitStatus(StatusRestored, Meta{Timestamp: timestamp})
}

// Clear deletes the stored payload. A pending snapshot is kept and will still
// be written when its task fires.
func (g *Gateway) Clear(ctx context.Context) error {
	if !g.Available() {
		return nil
	}
	g.ioMu.Lock()
	err := g.storage.Delete(ctx, g.key)
	g.ioMu.Unlock()
	if err != nil && !errors.Is(err, ErrNotFound) {
		return g.fail(&IOError{Op: "delete", Key: g.key, Err: err})
	}
	g.setStatus(StatusIdle)
	g.emitStatus(StatusIdle, Meta{})
	return nil
}

func (g *Gateway) fail(err error) error {
	g.logger.Warn("autosave failure", zap.String("key", g.key), zap.Error(err))
	g.setStatus(StatusError)
	g.emitError(err)
	g.emitStatus(StatusError, Meta{Err: err})
	return err
}

func (g *Gateway) setStatus(status Status) {
	g.mu.Lock()
	g.status = status
	g.mu.Unlock()
}

func (g *Gateway) emitStatus(status Status, meta Meta) {
	if g.onStatus != nil {
		g.onStatus(status, meta)
	}
}

func (g *Gateway) emitError(err error) {
	if g.onError != nil {
		g.onError(err)
	}
}

// StatusMessage renders the indicator text for a status.
func StatusMessage(status Status, meta Meta) string {
	switch status {
	case StatusSaving:
		return "Saving…"
	case StatusSaved:
		if clock := clockTime(meta.Timestamp); clock != "" {
			return "Saved at " + clock
		}
		return "Saved"
	case StatusRestored:
		if clock := clockTime(meta.Timestamp); clock != "" {
			return "Restored from " + clock
		}
		return "Restored"
	case StatusError:
		if meta.Err != nil {
			return "Autosave error: " + meta.Err.Error()
		}
		return "Autosave error"
	case StatusDisabled:
		return "Autosave unavailable"
	default:
		return "Autosave ready"
	}
}

func clockTime(timestamp string) string {
	if timestamp == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return ""
	}
	return t.Local().Format("15:04")
}
