package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anasco119/QueriesShot/config"
)

// Messenger is the slice of the chat transport the moderation escalator
// needs. The Telegram client implements it; tests substitute a mock.
type Messenger interface {
	// SendMessage returns the id of the sent message so callers can
	// schedule its deletion.
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error
}

const (
	warningTemplate    = "⚠️ %s، هذه الرسالة تخالف قواعد المجموعة وتم حذفها. المخالفة رقم %d."
	muteNoticeTemplate = "🔇 تم كتم %s لمدة %d دقائق بسبب تكرار المخالفات."
)

// ModerationService tracks rule violations per user and escalates repeat
// offenders to a timed mute. Counters are process-lifetime state: they
// are never decremented and survive a mute, so a user who keeps violating
// after the threshold is re-muted on every further violation. That
// permanent escalation matches the original bot and is kept on purpose.
//
// Every chat action here is best-effort. A message already deleted or a
// user who already left must not break the pipeline, so failures are
// logged and swallowed.
type ModerationService struct {
	mu         sync.Mutex
	violations map[int64]int

	threshold    int
	muteDuration time.Duration
	noticeTTL    time.Duration
	messenger    Messenger

	// schedule is replaceable in tests so self-deleting notices run
	// synchronously instead of on real timers.
	schedule func(d time.Duration, f func())
}

// NewModerationService creates a ModerationService.
func NewModerationService(cfg config.ModerationConfig, messenger Messenger) *ModerationService {
	return &ModerationService{
		violations:   make(map[int64]int),
		threshold:    cfg.ViolationThreshold,
		muteDuration: cfg.MuteDuration,
		noticeTTL:    cfg.NoticeTTL,
		messenger:    messenger,
		schedule:     func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// HandleViolation applies the full escalation sequence for one violating
// message: delete it, post a self-expiring warning, and once the user's
// counter reaches the threshold, mute them and post a self-expiring mute
// notice. The counter update is serialized per tracker, so rapid-fire
// violations from one user cannot lose increments.
func (m *ModerationService) HandleViolation(ctx context.Context, chatID, userID, messageID int64, displayName string) {
	if err := m.messenger.DeleteMessage(ctx, chatID, messageID); err != nil {
		log.Printf("WARN: [Moderation] Could not delete offending message %d in chat %d: %v", messageID, chatID, err)
	}

	m.mu.Lock()
	m.violations[userID]++
	count := m.violations[userID]
	m.mu.Unlock()
	log.Printf("INFO: [Moderation] User %d (%s) violation count is now %d.", userID, displayName, count)

	m.postTransientNotice(ctx, chatID, fmt.Sprintf(warningTemplate, displayName, count))

	if count >= m.threshold {
		m.mute(ctx, chatID, userID, displayName)
	}
}

// ViolationCount returns the current counter for a user.
func (m *ModerationService) ViolationCount(userID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.violations[userID]
}

// mute issues the timed restriction and posts its notice.
func (m *ModerationService) mute(ctx context.Context, chatID, userID int64, displayName string) {
	until := time.Now().Add(m.muteDuration)
	if err := m.messenger.RestrictMember(ctx, chatID, userID, until); err != nil {
		log.Printf("WARN: [Moderation] Could not restrict user %d in chat %d: %v", userID, chatID, err)
	} else {
		log.Printf("INFO: [Moderation] User %d muted until %s.", userID, until.Format(time.RFC3339))
	}
	minutes := int(m.muteDuration.Minutes())
	m.postTransientNotice(ctx, chatID, fmt.Sprintf(muteNoticeTemplate, displayName, minutes))
}

// postTransientNotice sends a notice and schedules its deletion after the
// configured TTL on an independent timer, so a slow transport never stalls
// the handling of the next message.
func (m *ModerationService) postTransientNotice(ctx context.Context, chatID int64, text string) {
	noticeID, err := m.messenger.SendMessage(ctx, chatID, text)
	if err != nil {
		log.Printf("WARN: [Moderation] Could not post notice in chat %d: %v", chatID, err)
		return
	}
	m.schedule(m.noticeTTL, func() {
		// The parent context belongs to the originating message and may
		// be long gone by the time the timer fires.
		if err := m.messenger.DeleteMessage(context.Background(), chatID, noticeID); err != nil {
			log.Printf("WARN: [Moderation] Could not remove notice %d in chat %d: %v", noticeID, chatID, err)
		}
	})
}
