package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/anasco119/QueriesShot/config"
	"github.com/anasco119/QueriesShot/models"
	"github.com/anasco119/QueriesShot/services"
	"github.com/anasco119/QueriesShot/telegram"
)

const (
	testAdminID = int64(1000)
	testGroupID = int64(-200200)
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) SendMessage(ctx context.Context, chatID int64, text string) (int64, error) {
	args := m.Called(ctx, chatID, text)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockMessenger) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	args := m.Called(ctx, chatID, messageID)
	return args.Error(0)
}

func (m *mockMessenger) RestrictMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	args := m.Called(ctx, chatID, userID, until)
	return args.Error(0)
}

type mockFAQRepo struct {
	mock.Mock
}

func (m *mockFAQRepo) ListAll() ([]models.FAQEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FAQEntry), args.Error(1)
}

func (m *mockFAQRepo) Add(question, answer, category string) (*models.FAQEntry, error) {
	args := m.Called(question, answer, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FAQEntry), args.Error(1)
}

func (m *mockFAQRepo) Delete(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

type mockChannelRepo struct {
	mock.Mock
}

func (m *mockChannelRepo) Record(chatID, messageID int64, text string, postedAt time.Time) error {
	args := m.Called(chatID, messageID, text, postedAt)
	return args.Error(0)
}

func (m *mockChannelRepo) Recent(limit int) ([]models.ChannelPost, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChannelPost), args.Error(1)
}

type testFixture struct {
	handler     *Handler
	oracle      *mockOracle
	messenger   *mockMessenger
	faqRepo     *mockFAQRepo
	channelRepo *mockChannelRepo
	quota       *services.QuotaTracker
}

// openHour is 14:00 in Khartoum; closedHour is 20:00.
var (
	openHour   = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	closedHour = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
)

func newTestFixture(t *testing.T, now time.Time) *testFixture {
	t.Helper()

	worktime, err := services.NewWorkTimeService(config.WorkingHours{Start: 8, End: 19, Timezone: "Africa/Khartoum"})
	require.NoError(t, err)

	oracle := new(mockOracle)
	messenger := new(mockMessenger)
	faqRepo := new(mockFAQRepo)
	channelRepo := new(mockChannelRepo)

	quota := services.NewQuotaTracker(10, worktime)
	knowledge := services.NewKnowledgeService(faqRepo, channelRepo, 5)
	classifier := services.NewClassifierService(oracle)
	router := services.NewRouterService(oracle)
	moderation := services.NewModerationService(config.ModerationConfig{
		ViolationThreshold: 3,
		MuteDuration:       10 * time.Minute,
		NoticeTTL:          time.Hour, // keep notice self-deletion out of test timing
	}, messenger)

	handler := NewHandler(testAdminID, testGroupID, worktime, quota, knowledge, classifier, router, moderation, messenger, faqRepo, channelRepo)
	handler.now = func() time.Time { return now }

	return &testFixture{
		handler:     handler,
		oracle:      oracle,
		messenger:   messenger,
		faqRepo:     faqRepo,
		channelRepo: channelRepo,
		quota:       quota,
	}
}

func (f *testFixture) emptyKnowledge() {
	f.faqRepo.On("ListAll").Return([]models.FAQEntry{}, nil)
	f.channelRepo.On("Recent", 5).Return([]models.ChannelPost{}, nil)
}

func privateMessage(userID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 10,
			Chat:      &telegram.Chat{ID: userID, Type: "private"},
			From:      &telegram.User{ID: userID, FirstName: "Sara"},
			Text:      text,
		},
	}
}

func groupMessage(userID, messageID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 2,
		Message: &telegram.Message{
			MessageID: messageID,
			Chat:      &telegram.Chat{ID: testGroupID, Type: "supergroup"},
			From:      &telegram.User{ID: userID, FirstName: "Khalid"},
			Text:      text,
		},
	}
}

func TestHandler_ClosedHoursPrivateUser(t *testing.T) {
	f := newTestFixture(t, closedHour)

	f.messenger.On("SendMessage", mock.Anything, int64(500), closedNotice).Return(int64(1), nil).Once()

	f.handler.HandleUpdate(context.Background(), privateMessage(500, "hello?"))

	// The bilingual notice is sent, no quota is consumed and the oracle
	// is never reached.
	assert.Equal(t, 10, f.quota.Remaining(500))
	f.messenger.AssertExpectations(t)
	f.oracle.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestHandler_ClosedHoursGroupIsSilent(t *testing.T) {
	f := newTestFixture(t, closedHour)

	f.handler.HandleUpdate(context.Background(), groupMessage(500, 11, "hello group"))

	f.messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	f.oracle.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestHandler_PrivateUserGetsAnswerWithinQuota(t *testing.T) {
	f := newTestFixture(t, openHour)
	f.emptyKnowledge()

	f.oracle.On("Complete", mock.Anything, mock.AnythingOfType("string")).Return("إجابة المعلم 📚", nil).Times(10)
	f.messenger.On("SendMessage", mock.Anything, int64(500), "إجابة المعلم 📚").Return(int64(1), nil).Times(10)
	f.messenger.On("SendMessage", mock.Anything, int64(500), quotaNotice).Return(int64(2), nil).Once()

	for i := 0; i < 11; i++ {
		f.handler.HandleUpdate(context.Background(), privateMessage(500, "what is a verb?"))
	}

	// The 11th message gets the quota notice and makes no oracle call.
	f.oracle.AssertNumberOfCalls(t, "Complete", 10)
	f.messenger.AssertExpectations(t)
}

func TestHandler_GroupViolationFlow(t *testing.T) {
	f := newTestFixture(t, openHour)

	// Classified as a violation: the message is deleted, a warning is
	// posted, the counter advances, and nothing is generated.
	f.oracle.On("Complete", mock.Anything, mock.AnythingOfType("string")).Return("4", nil).Once()
	f.messenger.On("DeleteMessage", mock.Anything, testGroupID, int64(77)).Return(nil).Once()
	f.messenger.On("SendMessage", mock.Anything, testGroupID, mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "Khalid")
	})).Return(int64(78), nil).Once()

	f.handler.HandleUpdate(context.Background(), groupMessage(42, 77, "spam spam spam"))

	f.oracle.AssertNumberOfCalls(t, "Complete", 1)
	f.messenger.AssertExpectations(t)
	f.messenger.AssertNotCalled(t, "RestrictMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_GroupOffTopicIsIgnored(t *testing.T) {
	f := newTestFixture(t, openHour)

	f.oracle.On("Complete", mock.Anything, mock.AnythingOfType("string")).Return("nonsense reply", nil).Once()

	f.handler.HandleUpdate(context.Background(), groupMessage(42, 77, "random chatter"))

	// A malformed classification degrades to off-topic: no reply, no
	// moderation, no crash.
	f.messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	f.messenger.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_GroupInquiryAnswered(t *testing.T) {
	f := newTestFixture(t, openHour)
	f.emptyKnowledge()

	f.oracle.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "صنف الرسالة")
	})).Return("1", nil).Once()
	f.oracle.On("Complete", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "استفسار المستخدم")
	})).Return("الرد المُولد", nil).Once()
	f.messenger.On("SendMessage", mock.Anything, testGroupID, "الرد المُولد").Return(int64(90), nil).Once()

	f.handler.HandleUpdate(context.Background(), groupMessage(42, 77, "when is the next class?"))

	f.messenger.AssertExpectations(t)
	f.oracle.AssertExpectations(t)
}

func TestHandler_OracleFailureProducesApology(t *testing.T) {
	f := newTestFixture(t, openHour)
	f.emptyKnowledge()

	f.oracle.On("Complete", mock.Anything, mock.AnythingOfType("string")).Return("", services.ErrOracleUnavailable)
	f.messenger.On("SendMessage", mock.Anything, int64(500), apology).Return(int64(1), nil).Once()

	f.handler.HandleUpdate(context.Background(), privateMessage(500, "help me"))

	f.messenger.AssertExpectations(t)
}

func TestHandler_UnrecognizedChatIgnored(t *testing.T) {
	f := newTestFixture(t, openHour)

	update := telegram.Update{
		UpdateID: 3,
		Message: &telegram.Message{
			MessageID: 5,
			Chat:      &telegram.Chat{ID: -999999, Type: "group"},
			From:      &telegram.User{ID: 500},
			Text:      "hello strangers",
		},
	}
	f.handler.HandleUpdate(context.Background(), update)

	f.messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	f.oracle.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestHandler_AdminAddFAQ(t *testing.T) {
	f := newTestFixture(t, closedHour) // admin bypasses the gate entirely

	f.faqRepo.On("Add", "When do classes start?", "Every Sunday at 6 PM.", "course info").
		Return(&models.FAQEntry{ID: 1}, nil).Once()
	f.messenger.On("SendMessage", mock.Anything, testAdminID, addFAQSuccess).Return(int64(1), nil).Once()

	f.handler.HandleUpdate(context.Background(), privateMessage(testAdminID, "/addfaq When do classes start? | Every Sunday at 6 PM. | course info"))

	f.faqRepo.AssertExpectations(t)
	f.messenger.AssertExpectations(t)
}

func TestHandler_AdminAddFAQBadFormat(t *testing.T) {
	f := newTestFixture(t, openHour)

	f.messenger.On("SendMessage", mock.Anything, testAdminID, addFAQUsage).Return(int64(1), nil).Once()

	f.handler.HandleUpdate(context.Background(), privateMessage(testAdminID, "/addfaq question without separators"))

	f.faqRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
	f.messenger.AssertExpectations(t)
}

func TestHandler_AdminDeleteFAQ(t *testing.T) {
	f := newTestFixture(t, openHour)

	t.Run("existing entry", func(t *testing.T) {
		f.faqRepo.On("Delete", uint(3)).Return(true, nil).Once()
		f.messenger.On("SendMessage", mock.Anything, testAdminID, "✅ تم حذف الاستفسار رقم 3.").Return(int64(1), nil).Once()

		f.handler.HandleUpdate(context.Background(), privateMessage(testAdminID, "/deletefaq 3"))

		f.faqRepo.AssertExpectations(t)
	})

	t.Run("missing entry", func(t *testing.T) {
		f.faqRepo.On("Delete", uint(8)).Return(false, nil).Once()
		f.messenger.On("SendMessage", mock.Anything, testAdminID, "❌ لا يوجد استفسار بالرقم 8.").Return(int64(1), nil).Once()

		f.handler.HandleUpdate(context.Background(), privateMessage(testAdminID, "/deletefaq 8"))

		f.faqRepo.AssertExpectations(t)
	})

	t.Run("not a number", func(t *testing.T) {
		f := newTestFixture(t, openHour)
		f.messenger.On("SendMessage", mock.Anything, testAdminID, deleteFAQUsage).Return(int64(1), nil).Once()

		f.handler.HandleUpdate(context.Background(), privateMessage(testAdminID, "/deletefaq soon"))

		f.faqRepo.AssertNotCalled(t, "Delete", mock.Anything)
	})
}

func TestHandler_ChannelPostRecorded(t *testing.T) {
	f := newTestFixture(t, openHour)

	postedAt := time.Unix(1790000000, 0)
	f.channelRepo.On("Record", int64(-300300), int64(501), "New grammar series this week", postedAt).Return(nil).Once()

	f.handler.HandleUpdate(context.Background(), telegram.Update{
		UpdateID: 4,
		ChannelPost: &telegram.Message{
			MessageID: 501,
			Chat:      &telegram.Chat{ID: -300300, Type: "channel"},
			Date:      1790000000,
			Text:      "New grammar series this week",
		},
	})

	f.channelRepo.AssertExpectations(t)
}
