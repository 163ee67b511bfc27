package services

import (
	"log"
	"sync"
	"time"
)

// QuotaTracker enforces the per-user daily message cap. Counters live in
// process memory for the life of the instance; the whole map is cleared
// lazily, on the first message observed after the bot-timezone date
// advances past the stored reset date. The reset and the per-user
// check-and-increment happen under one lock so concurrent messages from
// the same user can never both pass the check before either increments.
type QuotaTracker struct {
	mu         sync.Mutex
	counts     map[int64]int
	lastReset  time.Time // date (midnight in bot tz) of the last wholesale reset
	dailyLimit int
	worktime   *WorkTimeService
}

// NewQuotaTracker creates a QuotaTracker with the given daily limit.
// The WorkTimeService supplies timezone-correct calendar dates.
func NewQuotaTracker(dailyLimit int, worktime *WorkTimeService) *QuotaTracker {
	return &QuotaTracker{
		counts:     make(map[int64]int),
		dailyLimit: dailyLimit,
		worktime:   worktime,
	}
}

// CheckAndIncrement atomically applies the quota policy for one inbound
// message. It returns true (and counts the message) when the user is still
// under the daily limit, false (without counting) when the limit has been
// reached. A user at the limit stays blocked until the next day rollover.
func (q *QuotaTracker) CheckAndIncrement(userID int64, now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	today := q.worktime.CurrentDate(now)
	if today.After(q.lastReset) {
		if len(q.counts) > 0 {
			log.Printf("INFO: [Quota] Day rollover detected (%s); clearing %d user counters.",
				today.Format("2006-01-02"), len(q.counts))
		}
		q.counts = make(map[int64]int)
		q.lastReset = today
	}

	if q.counts[userID] >= q.dailyLimit {
		log.Printf("INFO: [Quota] User %d exceeded the daily limit of %d messages.", userID, q.dailyLimit)
		return false
	}
	q.counts[userID]++
	return true
}

// Remaining reports how many messages the user may still send today.
// It does not trigger a rollover check; callers wanting exact numbers
// should call it right after CheckAndIncrement.
func (q *QuotaTracker) Remaining(userID int64) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	remaining := q.dailyLimit - q.counts[userID]
	if remaining < 0 {
		return 0
	}
	return remaining
}
