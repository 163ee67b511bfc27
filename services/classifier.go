package services

import (
	"context"
	"fmt"
	"log"

	"github.com/anasco119/QueriesShot/models"
	"github.com/anasco119/QueriesShot/utils"
)

// classifierPrompt embeds the closed taxonomy. The numeric codes here are
// a contract with models.Intent: adding a category means changing both.
const classifierPrompt = `أنت مصنف رسائل في مجموعة لتعليم اللغة الإنجليزية. صنف الرسالة التالية في واحدة فقط من الفئات المرقمة أدناه، وأجب برقم الفئة فقط دون أي كلام إضافي:

1 - استفسار عام (سؤال عن الدورات أو المجموعة أو سؤال يمكن الإجابة عليه من الأسئلة الشائعة)
2 - محتوى تعليمي (نص أو فقرة كتبها الطالب ويريد ملاحظات دراسية عليها)
3 - تصحيح قواعد (طلب تصحيح جملة أو عبارة إنجليزية)
4 - مخالفة (إساءة أو محتوى مخالف لقواعد المجموعة)
5 - خارج الموضوع (دردشة لا علاقة لها بتعلم الإنجليزية)
6 - بحث عن كلمة (طلب معنى كلمة أو عبارة واحدة)

الرسالة: %s`

// ClassifierService assigns an Intent to every group message with one
// oracle round-trip.
type ClassifierService struct {
	oracle Oracle
}

// NewClassifierService creates a ClassifierService.
func NewClassifierService(oracle Oracle) *ClassifierService {
	return &ClassifierService{oracle: oracle}
}

// Classify returns the intent for messageText. Parsing is deliberately
// forgiving in one direction only: the first integer found in the reply is
// taken as the category code, and anything malformed or out of range
// (including an oracle failure) degrades to IntentOffTopic so the message
// is simply ignored.
func (c *ClassifierService) Classify(ctx context.Context, messageText string) models.Intent {
	reply, err := c.oracle.Complete(ctx, fmt.Sprintf(classifierPrompt, messageText))
	if err != nil {
		log.Printf("WARN: [Classifier] Oracle failure, treating message as off-topic: %v", err)
		return models.IntentOffTopic
	}

	code, ok := utils.FirstInt(reply)
	if !ok {
		log.Printf("WARN: [Classifier] No category code in oracle reply %q, treating message as off-topic.", reply)
		return models.IntentOffTopic
	}

	intent := models.IntentFromCode(code)
	log.Printf("INFO: [Classifier] Message classified as %s (code %d).", intent, code)
	return intent
}
