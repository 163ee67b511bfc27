package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/anasco119/QueriesShot/models"
	"github.com/anasco119/QueriesShot/repository"
	"github.com/anasco119/QueriesShot/services"
	"github.com/anasco119/QueriesShot/telegram"
)

// User-facing fixed strings. The working-hours notice is bilingual; the
// rest keep the original Arabic wording the group knows.
const (
	closedNotice = "عذرًا، البوت يعمل فقط من الساعة 8 صباحًا حتى 7 مساءً بتوقيت السودان.\nSorry, the bot is only available from 8 AM to 7 PM Sudan time."
	quotaNotice  = "عذرًا، لقد تجاوزت الحد المسموح به من الرسائل اليومية."
	apology      = "عذرًا، حدث خطأ أثناء معالجة سؤالك. يرجى المحاولة لاحقًا."

	addFAQUsage     = "❌ صيغة غير صحيحة. استخدم: /addfaq سؤال | جواب | فئة"
	addFAQSuccess   = "✅ تم إضافة الاستفسار بنجاح!"
	addFAQFailure   = "❌ فشل في إضافة الاستفسار."
	deleteFAQUsage  = "❌ الرقم غير صالح. مثال: /deletefaq 1"
	deleteFAQDone   = "✅ تم حذف الاستفسار رقم %d."
	deleteFAQAbsent = "❌ لا يوجد استفسار بالرقم %d."
)

// Handler is the per-message pipeline: intake → gate → quota →
// classification → routing or escalation. One HandleUpdate call runs per
// inbound update, each on its own goroutine; all cross-message state lives
// in the injected quota and moderation services.
type Handler struct {
	adminUserID    int64
	allowedGroupID int64

	worktime    *services.WorkTimeService
	quota       *services.QuotaTracker
	knowledge   *services.KnowledgeService
	classifier  *services.ClassifierService
	router      *services.RouterService
	moderation  *services.ModerationService
	messenger   services.Messenger
	faqRepo     repository.FAQRepository
	channelRepo repository.ChannelRepository

	// now is replaceable in tests.
	now func() time.Time
}

// NewHandler creates the pipeline handler.
func NewHandler(
	adminUserID, allowedGroupID int64,
	worktime *services.WorkTimeService,
	quota *services.QuotaTracker,
	knowledge *services.KnowledgeService,
	classifier *services.ClassifierService,
	router *services.RouterService,
	moderation *services.ModerationService,
	messenger services.Messenger,
	faqRepo repository.FAQRepository,
	channelRepo repository.ChannelRepository,
) *Handler {
	return &Handler{
		adminUserID:    adminUserID,
		allowedGroupID: allowedGroupID,
		worktime:       worktime,
		quota:          quota,
		knowledge:      knowledge,
		classifier:     classifier,
		router:         router,
		moderation:     moderation,
		messenger:      messenger,
		faqRepo:        faqRepo,
		channelRepo:    channelRepo,
		now:            time.Now,
	}
}

// HandleUpdate processes one inbound update. Nothing may escape it: the
// last-resort recover posts the generic apology so a single bad message
// can never take the bot down.
func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) {
	var chatID int64
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: [Handler] Recovered from panic while handling update %d: %v", update.UpdateID, r)
			if chatID != 0 {
				h.reply(ctx, chatID, apology)
			}
		}
	}()

	if update.ChannelPost != nil {
		h.recordChannelPost(update.ChannelPost)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.From == nil || msg.Text == "" || msg.From.IsBot {
		return
	}
	chatID = msg.Chat.ID
	userID := msg.From.ID
	log.Printf("INFO: [Handler] Message %d from user %d in chat %d.", msg.MessageID, userID, chatID)

	switch {
	case chatID == userID && userID == h.adminUserID:
		h.handleAdminPrivate(ctx, msg)
	case chatID == userID:
		h.handleUserPrivate(ctx, msg)
	case chatID == h.allowedGroupID:
		h.handleGroup(ctx, msg)
	default:
		log.Printf("INFO: [Handler] Ignoring message from unrecognized chat %d.", chatID)
	}
}

// recordChannelPost keeps broadcast-channel excerpts for the knowledge
// snapshot.
func (h *Handler) recordChannelPost(post *telegram.Message) {
	if post.Chat == nil {
		return
	}
	postedAt := time.Unix(post.Date, 0)
	if post.Date == 0 {
		postedAt = h.now()
	}
	if err := h.channelRepo.Record(post.Chat.ID, post.MessageID, post.Text, postedAt); err != nil {
		log.Printf("WARN: [Handler] Could not record channel post %d: %v", post.MessageID, err)
	}
}

// handleAdminPrivate serves the admin's private chat: FAQ management
// commands, and for anything else a knowledge-grounded answer with no
// gate or quota applied.
func (h *Handler) handleAdminPrivate(ctx context.Context, msg *telegram.Message) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/addfaq"):
		h.handleAddFAQ(ctx, msg.Chat.ID, text)
	case strings.HasPrefix(text, "/deletefaq"):
		h.handleDeleteFAQ(ctx, msg.Chat.ID, text)
	default:
		h.answerInquiry(ctx, msg.Chat.ID, text, msg.From.DisplayName())
	}
}

// handleAddFAQ parses "/addfaq question | answer | category".
func (h *Handler) handleAddFAQ(ctx context.Context, chatID int64, text string) {
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 3 {
		h.reply(ctx, chatID, addFAQUsage)
		return
	}
	question := strings.TrimSpace(strings.TrimPrefix(parts[0], "/addfaq"))
	answer := parts[1]
	category := parts[2]
	if question == "" || answer == "" {
		h.reply(ctx, chatID, addFAQUsage)
		return
	}
	if _, err := h.faqRepo.Add(question, answer, category); err != nil {
		h.reply(ctx, chatID, addFAQFailure)
		return
	}
	h.reply(ctx, chatID, addFAQSuccess)
}

// handleDeleteFAQ parses "/deletefaq id".
func (h *Handler) handleDeleteFAQ(ctx context.Context, chatID int64, text string) {
	idText := strings.TrimSpace(strings.TrimPrefix(text, "/deletefaq"))
	id, err := strconv.ParseUint(idText, 10, 32)
	if err != nil || id == 0 {
		h.reply(ctx, chatID, deleteFAQUsage)
		return
	}
	deleted, err := h.faqRepo.Delete(uint(id))
	if err != nil {
		h.reply(ctx, chatID, addFAQFailure)
		return
	}
	if !deleted {
		h.replyf(ctx, chatID, deleteFAQAbsent, id)
		return
	}
	h.replyf(ctx, chatID, deleteFAQDone, id)
}

// handleUserPrivate serves ordinary users writing to the bot directly.
// The same gate and quota rules as the group apply, but the closed-hours
// case is communicated instead of silently dropped.
func (h *Handler) handleUserPrivate(ctx context.Context, msg *telegram.Message) {
	now := h.now()
	if !h.worktime.IsOpen(now) {
		h.reply(ctx, msg.Chat.ID, closedNotice)
		return
	}
	if !h.quota.CheckAndIncrement(msg.From.ID, now) {
		h.reply(ctx, msg.Chat.ID, quotaNotice)
		return
	}
	h.answerInquiry(ctx, msg.Chat.ID, msg.Text, msg.From.DisplayName())
}

// handleGroup serves the allowed group: gate, quota, one classification
// round-trip, then either moderation or a generated reply.
func (h *Handler) handleGroup(ctx context.Context, msg *telegram.Message) {
	now := h.now()
	if !h.worktime.IsOpen(now) {
		return
	}
	if !h.quota.CheckAndIncrement(msg.From.ID, now) {
		h.reply(ctx, msg.Chat.ID, quotaNotice)
		return
	}

	intent := h.classifier.Classify(ctx, msg.Text)
	switch intent {
	case models.IntentViolation:
		h.moderation.HandleViolation(ctx, msg.Chat.ID, msg.From.ID, msg.MessageID, msg.From.DisplayName())
	case models.IntentOffTopic:
		// The bot stays out of ordinary chatter.
	default:
		snapshot := h.knowledge.Snapshot()
		reply, err := h.router.Route(ctx, intent, msg.Text, snapshot, msg.From.DisplayName())
		if err != nil {
			log.Printf("WARN: [Handler] Routing failed for message %d: %v", msg.MessageID, err)
			h.reply(ctx, msg.Chat.ID, apology)
			return
		}
		if reply != "" {
			h.reply(ctx, msg.Chat.ID, reply)
		}
	}
}

// answerInquiry produces a knowledge-grounded answer for private chats.
func (h *Handler) answerInquiry(ctx context.Context, chatID int64, text, displayName string) {
	snapshot := h.knowledge.Snapshot()
	reply, err := h.router.Route(ctx, models.IntentGeneralInquiry, text, snapshot, displayName)
	if err != nil {
		log.Printf("WARN: [Handler] Inquiry answer failed: %v", err)
		h.reply(ctx, chatID, apology)
		return
	}
	h.reply(ctx, chatID, reply)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if _, err := h.messenger.SendMessage(ctx, chatID, text); err != nil {
		log.Printf("WARN: [Handler] Could not send reply to chat %d: %v", chatID, err)
	}
}

func (h *Handler) replyf(ctx context.Context, chatID int64, format string, args ...interface{}) {
	h.reply(ctx, chatID, fmt.Sprintf(format, args...))
}
