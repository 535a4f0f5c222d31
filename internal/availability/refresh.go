package availability

import (
	"context"

	"github.com/TejjP/zyero-lead-accelerator/internal/timeslot"
)

// Refresh forces a synchronous fetch for a date, replacing the cache
// entry on success. The admin console uses it after mutations once the
// store has had time to settle.
func (s *Service) Refresh(ctx context.Context, date timeslot.DateKey) error {
	return s.fetchAndStore(ctx, date)
}
