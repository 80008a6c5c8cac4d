// Package listing maintains a read-only snapshot of the registry and filters
// it into marketplace views. The snapshot is only ever replaced wholesale by
// re-fetching from the ledger; record events trigger a refresh but never
// patch cached state.
package listing

import (
	"context"
	"fmt"
	"log"
	"sync"

	"land-registry-workflow/internal/domain"
	"land-registry-workflow/internal/ledger"
	"land-registry-workflow/internal/observability"
)

// Mode selects a marketplace view.
type Mode string

const (
	ModeAll       Mode = "all"       // every record
	ModeTokenized Mode = "tokenized" // fractionalized parcels
	ModeForSale   Mode = "forSale"   // records still available
	ModeSold      Mode = "sold"      // records no longer available
)

// Filter returns the records matching mode, preserving input order. The
// input slice is never modified. An unknown mode yields nothing.
func Filter(records []*domain.LandRecord, mode Mode) []*domain.LandRecord {
	var out []*domain.LandRecord
	for _, r := range records {
		if r == nil {
			continue
		}
		switch mode {
		case ModeAll:
			out = append(out, r)
		case ModeTokenized:
			if r.Tokenized() {
				out = append(out, r)
			}
		case ModeForSale:
			if r.IsAvailable {
				out = append(out, r)
			}
		case ModeSold:
			if !r.IsAvailable {
				out = append(out, r)
			}
		}
	}
	return out
}

// Service holds the registry snapshot.
type Service struct {
	ledger  ledger.Ledger
	verbose bool

	mu       sync.RWMutex
	snapshot []*domain.LandRecord
}

// NewService creates a listing service with an empty snapshot.
func NewService(l ledger.Ledger, verbose bool) *Service {
	return &Service{ledger: l, verbose: verbose}
}

// Refresh re-fetches every record from the ledger and replaces the snapshot.
// On any fetch error the previous snapshot is kept intact.
func (s *Service) Refresh(ctx context.Context) error {
	count, err := s.ledger.LandCount(ctx)
	if err != nil {
		observability.DefaultMetrics.SnapshotRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch land count: %w", err)
	}

	records := make([]*domain.LandRecord, 0, count)
	for id := int64(1); id <= count; id++ {
		r, err := s.ledger.GetLand(ctx, id)
		if err != nil {
			observability.DefaultMetrics.SnapshotRefreshes.WithLabelValues("error").Inc()
			return fmt.Errorf("fetch land %d: %w", id, err)
		}
		records = append(records, r)
	}

	s.mu.Lock()
	s.snapshot = records
	s.mu.Unlock()

	observability.DefaultMetrics.SnapshotRefreshes.WithLabelValues("ok").Inc()
	observability.DefaultMetrics.SnapshotRecords.Set(float64(len(records)))
	s.log("refreshed snapshot: %d records", len(records))
	return nil
}

// List returns the records of the current snapshot matching mode, in ledger
// ID order. Returned records are copies.
func (s *Service) List(mode Mode) []*domain.LandRecord {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()

	filtered := Filter(snapshot, mode)
	out := make([]*domain.LandRecord, len(filtered))
	for i, r := range filtered {
		out[i] = r.Clone()
	}
	return out
}

// Watch consumes record events and refreshes the snapshot after each one.
// It returns when ctx is cancelled or the feed closes. Refresh errors are
// logged and do not stop the watch: the next event retries naturally.
func (s *Service) Watch(ctx context.Context, feed ledger.EventFeed) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-feed.Events():
			if !ok {
				return
			}
			s.log("record event: land %d %s", ev.LandID, ev.Kind)
			if err := s.Refresh(ctx); err != nil {
				log.Printf("[listing] refresh after event failed: %v", err)
			}
		}
	}
}

func (s *Service) log(format string, args ...interface{}) {
	if s.verbose {
		log.Printf("[listing] "+format, args...)
	}
}
