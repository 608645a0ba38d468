package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docmark/internal/comment"
	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/editor"
	"github.com/dgallion1/docmark/internal/uid"
)

// Manager owns the open sessions and evicts idle ones.
type Manager struct {
	store *Store
	ids   uid.Generator
	log   *slog.Logger
	cfg   config.Config

	load   *LatencyStats
	render *LatencyStats
	ops    *LatencyStats

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Stats aggregates latency by operation kind.
type Stats struct {
	Sessions int           `json:"sessions"`
	Load     StatsSnapshot `json:"load"`
	Render   StatsSnapshot `json:"render"`
	Ops      StatsSnapshot `json:"ops"`
}

// NewManager creates a manager. Call Start to begin eviction.
func NewManager(cfg config.Config, log *slog.Logger) *Manager {
	return &Manager{
		store:  NewStore(cfg.SessionTTL, cfg.MaxSessions),
		ids:    uid.Random{},
		log:    log,
		cfg:    cfg,
		load:   NewLatencyStats(cfg.StatsWindow),
		render: NewLatencyStats(cfg.StatsWindow),
		ops:    NewLatencyStats(cfg.StatsWindow),
	}
}

// Start launches the cleanup goroutine.
func (m *Manager) Start(ctx context.Context) {
	cleanupCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	interval := m.cfg.CleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if n := m.store.Cleanup(); n > 0 {
					m.log.Info("evicted idle sessions", "count", n)
				}
			}
		}
	}()
}

// Stop shuts down the cleanup goroutine.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
}

// Open parses a file into a new session.
func (m *Manager) Open(filename string, r io.Reader) (*Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	id := m.ids.NewID()
	log := m.log.With("doc_id", id, "filename", filename)

	start := time.Now()
	ed, err := editor.New(log, &comment.Plugin{})
	if err != nil {
		return nil, err
	}
	if err := ed.LoadFile(bytes.NewReader(data), filename); err != nil {
		log.Error("load failed", "error", err)
		return nil, err
	}
	m.load.Record(time.Since(start).Milliseconds())

	sess := newSession(id, filename, ed, log)
	sess.ContentHash = ContentHashHex(data)
	sess.render = m.render
	if err := m.store.Put(sess); err != nil {
		return nil, err
	}
	log.Info("opened document", "comments", len(comment.List(ed.Document())))
	return sess, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	sess := m.store.Get(id)
	if sess == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return sess, nil
}

// Apply runs ops against a session and records their latency.
func (m *Manager) Apply(id string, ops []Op) (*Session, error) {
	sess, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := sess.Apply(ops); err != nil {
		return nil, err
	}
	m.ops.Record(time.Since(start).Milliseconds())
	return sess, nil
}

// Close drops a session.
func (m *Manager) Close(id string) error {
	if !m.store.Delete(id) {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	m.log.Info("closed document", "doc_id", id)
	return nil
}

// Stats returns current latency aggregates.
func (m *Manager) Stats() Stats {
	return Stats{
		Sessions: m.store.Len(),
		Load:     m.load.Snapshot(),
		Render:   m.render.Snapshot(),
		Ops:      m.ops.Snapshot(),
	}
}
