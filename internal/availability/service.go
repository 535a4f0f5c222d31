package availability

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TejjP/zyero-lead-accelerator/internal/metrics"
	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

// PrefetchWindow is how many upcoming candidate dates get background
// fetches after a date selection.
const PrefetchWindow = 3

// fetchTimeout bounds background fetches, which run detached from the
// request that triggered them.
const fetchTimeout = 15 * time.Second

// Fetcher reads busy slots from the booking store.
type Fetcher interface {
	BusyTimes(ctx context.Context, date timeslot.DateKey) ([]string, error)
}

// Snapshot is the merged availability view for a date.
type Snapshot struct {
	DateKey   timeslot.DateKey `json:"date"`
	BusySlots []string         `json:"busySlots"`
	Loading   bool             `json:"loading"`
	FetchedAt time.Time        `json:"fetchedAt"`
}

// Service coordinates the cache, the session overlay and the store.
// Reads return cached data immediately and refresh stale entries in the
// background; a failed refresh leaves the prior entry untouched.
type Service struct {
	fetcher   Fetcher
	cache     *Cache
	overlay   *Overlay
	logger    *zerolog.Logger
	staleness time.Duration
	now       func() time.Time

	mu       sync.Mutex
	inflight map[timeslot.DateKey]bool
	wg       sync.WaitGroup
}

// NewService creates an availability service with the default staleness
// threshold.
func NewService(fetcher Fetcher, cache *Cache, overlay *Overlay, logger *zerolog.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		cache:     cache,
		overlay:   overlay,
		logger:    logger,
		staleness: StalenessThreshold,
		now:       time.Now,
		inflight:  make(map[timeslot.DateKey]bool),
	}
}

// Overlay exposes the session overlay for the booking flow.
func (s *Service) Overlay() *Overlay { return s.overlay }

// Cache exposes the cache for the booking flow's post-submit merge.
func (s *Service) Cache() *Cache { return s.cache }

// Snapshot returns the current view for a date without blocking on the
// network. A present entry is returned as-is (refreshing in the
// background if stale); an absent entry yields Loading=true while the
// first fetch runs.
func (s *Service) Snapshot(date timeslot.DateKey) Snapshot {
	entry, ok := s.cache.Get(date)
	if !ok {
		metrics.IncCacheLookup("miss")
		s.refreshAsync(date)
		return Snapshot{DateKey: date, Loading: true}
	}
	metrics.IncCacheLookup("hit")
	if s.cache.IsStale(date, s.staleness) {
		s.refreshAsync(date)
	}
	return Snapshot{
		DateKey:   date,
		BusySlots: s.overlay.Merge(date, entry.BusySlots),
		FetchedAt: entry.FetchedAt,
	}
}

// Busy is the blocking read path: cached data when present, otherwise a
// synchronous first fetch. The error from a failed first fetch is
// retryable; when a prior entry exists the stale data is returned and
// the refresh failure stays invisible.
func (s *Service) Busy(ctx context.Context, date timeslot.DateKey) ([]string, error) {
	if entry, ok := s.cache.Get(date); ok {
		metrics.IncCacheLookup("hit")
		if s.cache.IsStale(date, s.staleness) {
			s.refreshAsync(date)
		}
		return s.overlay.Merge(date, entry.BusySlots), nil
	}
	metrics.IncCacheLookup("miss")
	if err := s.fetchAndStore(ctx, date); err != nil {
		return nil, err
	}
	entry, _ := s.cache.Get(date)
	return s.overlay.Merge(date, entry.BusySlots), nil
}

// Prefetch issues background fetches for the next candidate dates after
// a selection, skipping past dates and the weekly closed day. Dates
// already cached or already being fetched are left alone, so repeated
// selection of the same date does no redundant work.
func (s *Service) Prefetch(date timeslot.DateKey) {
	today := timeslot.NewDateKey(s.now())
	collected := 0
	for offset := 1; offset <= PrefetchWindow+1 && collected < PrefetchWindow; offset++ {
		candidate := date.AddDays(offset)
		if candidate.Before(today) || candidate.Weekday() == timeslot.ClosedWeekday {
			continue
		}
		collected++
		if _, ok := s.cache.Get(candidate); ok {
			continue
		}
		s.refreshAsync(candidate)
	}
}

// Wait blocks until all background fetches settle. Used on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) refreshAsync(date timeslot.DateKey) {
	s.mu.Lock()
	if s.inflight[date] {
		s.mu.Unlock()
		return
	}
	s.inflight[date] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, date)
			s.mu.Unlock()
		}()

		// Detached from the triggering request: a fetch for a date the
		// user has navigated away from still completes and updates the
		// cache for its date.
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		if err := s.fetchAndStore(ctx, date); err != nil {
			s.logger.Warn().Err(err).Str("date", date.String()).Msg("background availability refresh failed")
		}
	}()
}

func (s *Service) fetchAndStore(ctx context.Context, date timeslot.DateKey) error {
	busy, err := s.fetcher.BusyTimes(ctx, date)
	if err != nil {
		metrics.IncAvailabilityFetch("error")
		return err
	}
	metrics.IncAvailabilityFetch("ok")
	s.cache.Put(date, busy)
	return nil
}
