package services

import (
	"context"
	"fmt"
	"log"

	"github.com/anasco119/QueriesShot/models"
	"github.com/anasco119/QueriesShot/utils"
)

// Prompt templates, one per generated-reply intent. All of them keep the
// English-teacher persona of the original QueriesShot bot.
const (
	inquiryPrompt = `أنت معلم لغة إنجليزية محترف. لديك قاعدة بيانات تحتوي على الأسئلة والأجوبة التالية:

%s
استفسار المستخدم: %s

أجب على استفسار المستخدم بناءً على قاعدة البيانات إذا كان السؤال متعلقًا بها. إذا لم يكن السؤال موجودًا في قاعدة البيانات، قم بالإجابة بشكل عام كمعلم لغة إنجليزية محترف. أضف في نهاية الرد جملة تحفيزية لتشجيع الطلاب على متابعة القناة. حافظ على الرسالة قصيرة إن أمكن وجميلة بصريًا باستخدام الإيموجي. إذا سُئلت عن اسمك، أجب برد مختصر بأن اسمك هو بوت QueriesShot للإجابة عن الأسئلة الشائعة.`

	studyFeedbackPrompt = `أنت معلم لغة إنجليزية محترف. كتب الطالب %s النص التالي كتدريب:

%s

قدم ملاحظات دراسية مشجعة وقصيرة: نقطة قوة واحدة، وأهم نقطتين للتحسين مع أمثلة مصححة. اختم بجملة تحفيزية قصيرة.`

	grammarPrompt = `أنت معلم لغة إنجليزية محترف. صحح الجملة التالية:

%s

اكتب الجملة المصححة مع إبراز التعديلات: ضع الكلمات المحذوفة بين ~الشطب~ والكلمات المضافة أو المصححة بين *النجمتين*، ثم اشرح سبب كل تصحيح في سطر واحد لكل تعديل.`

	wordLookupPrompt = `أنت معلم لغة إنجليزية محترف. اشرح الكلمة أو العبارة التالية: %s

أجب في خمسة أسطر بالضبط وبهذا الترتيب، سطر لكل حقل ودون عناوين إضافية:
الكلمة
المعنى بالإنجليزية
الترجمة العربية
جملة مثال بالإنجليزية
ملاحظة ختامية مشجعة`
)

// vocabParseFailureNotice is what the user sees when the lookup reply does
// not split into the five expected fields. Not retried.
const vocabParseFailureNotice = "عذرًا، لم أتمكن من قراءة نتيجة البحث عن الكلمة. حاول مرة أخرى بصياغة أبسط. 🙏"

// vocabFieldCount is the output-shape contract for word lookups: word,
// meaning, translation, example, closing remark.
const vocabFieldCount = 5

// RouterService builds a category-specific instruction payload for each
// classified intent, invokes the oracle once, and returns the formatted
// reply text.
type RouterService struct {
	oracle Oracle
}

// NewRouterService creates a RouterService.
func NewRouterService(oracle Oracle) *RouterService {
	return &RouterService{oracle: oracle}
}

// Route produces the outgoing reply for a classified message. A reply of
// "" with a nil error means the bot stays silent (off-topic). Violations
// never reach the router; the moderation escalator owns that path. Oracle
// failures are returned to the caller, which substitutes the apology.
func (r *RouterService) Route(ctx context.Context, intent models.Intent, messageText string, snapshot KnowledgeSnapshot, displayName string) (string, error) {
	switch intent {
	case models.IntentGeneralInquiry:
		return r.oracle.Complete(ctx, fmt.Sprintf(inquiryPrompt, snapshot.PromptSection(), messageText))
	case models.IntentLearningContent:
		return r.oracle.Complete(ctx, fmt.Sprintf(studyFeedbackPrompt, displayName, messageText))
	case models.IntentGrammarCorrection:
		return r.oracle.Complete(ctx, fmt.Sprintf(grammarPrompt, messageText))
	case models.IntentWordLookup:
		return r.lookupWord(ctx, messageText)
	case models.IntentViolation, models.IntentOffTopic:
		return "", nil
	default:
		// Unknown codes were already folded into off-topic by the
		// classifier; an unexpected value here still means silence.
		log.Printf("WARN: [Router] Unexpected intent %s, staying silent.", intent)
		return "", nil
	}
}

// lookupWord runs the vocabulary path and enforces its output shape: the
// reply must split into at least five non-empty lines. Fewer is a hard
// failure surfaced to the user as a parse notice, never retried.
func (r *RouterService) lookupWord(ctx context.Context, messageText string) (string, error) {
	reply, err := r.oracle.Complete(ctx, fmt.Sprintf(wordLookupPrompt, messageText))
	if err != nil {
		return "", err
	}
	lines := utils.NonEmptyLines(reply)
	if len(lines) < vocabFieldCount {
		log.Printf("WARN: [Router] Word lookup reply has %d fields, expected %d. Returning parse-failure notice.", len(lines), vocabFieldCount)
		return vocabParseFailureNotice, nil
	}
	return reply, nil
}
