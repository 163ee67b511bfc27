package services

import (
	"fmt"
	"time"

	"github.com/anasco119/QueriesShot/config"
)

// WorkTimeService decides whether the bot is open for ordinary users at a
// given instant and supplies the calendar date used for quota rollover.
// All decisions are made in the configured bot timezone, so a server
// deployed in any region still follows Sudan local time.
type WorkTimeService struct {
	start    int
	end      int
	location *time.Location
}

// NewWorkTimeService creates a WorkTimeService for the half-open window
// [start, end) in the configured timezone. The window may not wrap
// midnight; config validation rejects that before we get here, but the
// constructor re-checks so the invariant is local.
func NewWorkTimeService(cfg config.WorkingHours) (*WorkTimeService, error) {
	if cfg.Start < 0 || cfg.End > 24 || cfg.Start >= cfg.End {
		return nil, fmt.Errorf("invalid working hours window [%d, %d)", cfg.Start, cfg.End)
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	return &WorkTimeService{start: cfg.Start, end: cfg.End, location: loc}, nil
}

// IsOpen reports whether the hour of day at now, in the bot timezone,
// falls within [start, end). Boundaries are exact: with start=8 the bot
// is closed at 7:59 and open at 8:00; with end=19 it is open at 18:59
// and closed at 19:00.
func (s *WorkTimeService) IsOpen(now time.Time) bool {
	hour := now.In(s.location).Hour()
	return hour >= s.start && hour < s.end
}

// CurrentDate returns the calendar date of now in the bot timezone,
// normalized to midnight. Comparing successive CurrentDate results is how
// the quota tracker detects a day rollover.
func (s *WorkTimeService) CurrentDate(now time.Time) time.Time {
	local := now.In(s.location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
}
