package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/source"
)

// Pruner is implemented by snapshot stores that can drop old snapshots.
type Pruner interface {
	Prune(ctx context.Context, keep int) (int, error)
}

// SnapshotConfig holds configuration for the snapshot copier
type SnapshotConfig struct {
	// SourceName labels snapshots in stores that record it.
	SourceName string

	// Interval is how often the scheduler copies (0 disables the loop).
	Interval time.Duration

	// Keep is how many snapshots survive pruning (0 keeps all).
	Keep int
}

// SnapshotResult describes one completed copy.
type SnapshotResult struct {
	ID     string `json:"id"`
	Rows   int    `json:"rows"`
	Pruned int    `json:"pruned"`
}

// SnapshotService copies raw rows from a live source into a snapshot store.
type SnapshotService struct {
	from   source.TransactionFetcher
	to     source.SnapshotWriter
	config SnapshotConfig
	logger *applog.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSnapshotService(from source.TransactionFetcher, to source.SnapshotWriter, config SnapshotConfig, logger *applog.Logger) *SnapshotService {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &SnapshotService{
		from:   from,
		to:     to,
		config: config,
		logger: logger.WithComponent(applog.ComponentStorage),
	}
}

// Copy fetches every row and stores it as one snapshot.
func (s *SnapshotService) Copy(ctx context.Context) (SnapshotResult, error) {
	records, err := s.from.FetchTransactions(ctx)
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("%w: %w", ErrSource, err)
	}

	var id string
	if named, ok := s.to.(interface {
		SaveSnapshotFrom(context.Context, string, []core.RawRecord) (string, error)
	}); ok && s.config.SourceName != "" {
		id, err = named.SaveSnapshotFrom(ctx, s.config.SourceName, records)
	} else {
		id, err = s.to.SaveSnapshot(ctx, records)
	}
	if err != nil {
		return SnapshotResult{}, fmt.Errorf("save snapshot: %w", err)
	}

	res := SnapshotResult{ID: id, Rows: len(records)}
	if p, ok := s.to.(Pruner); ok && s.config.Keep > 0 {
		n, err := p.Prune(ctx, s.config.Keep)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to prune snapshots", applog.FieldError, err)
		}
		res.Pruned = n
	}

	s.logger.InfoContext(ctx, "Snapshot copied",
		applog.FieldSnapshotID, res.ID,
		applog.FieldRows, res.Rows,
		"pruned", res.Pruned)
	return res, nil
}

// Start begins the periodic copy loop. Returns an error if already running
// or if no interval is configured.
func (s *SnapshotService) Start(ctx context.Context) error {
	if s.config.Interval <= 0 {
		return fmt.Errorf("snapshot interval not configured")
	}
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("snapshot scheduler is already running")
	}
	s.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	s.stopCh, s.doneCh = stopCh, doneCh
	s.mu.Unlock()

	go s.runLoop(ctx, stopCh, doneCh)

	s.logger.InfoContext(ctx, "Snapshot scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop gracefully stops the loop and waits for the current copy.
func (s *SnapshotService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	// A Stop that timed out already closed stopCh; later calls only wait.
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	doneCh := s.doneCh
	s.mu.Unlock()

	select {
	case <-doneCh:
		s.logger.InfoContext(ctx, "Snapshot scheduler stopped gracefully")
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Snapshot scheduler stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	if s.doneCh == doneCh {
		s.running = false
	}
	s.mu.Unlock()
	return nil
}

// IsRunning returns whether the loop is active
func (s *SnapshotService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *SnapshotService) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.copyLogged(ctx)
	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.copyLogged(ctx)
		}
	}
}

func (s *SnapshotService) copyLogged(ctx context.Context) {
	if _, err := s.Copy(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Snapshot copy failed", applog.FieldError, err)
	}
}
