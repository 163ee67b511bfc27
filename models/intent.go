package models

import "fmt"

// Intent is the classification assigned to every group message. The set is
// closed and integer-coded: the classifier prompt enumerates the same codes,
// so adding a category means updating both this enum and the prompt together.
type Intent int

const (
	IntentGeneralInquiry    Intent = 1 // question answerable from the FAQ / channel info
	IntentLearningContent   Intent = 2 // student-composed passage asking for study feedback
	IntentGrammarCorrection Intent = 3 // request to correct a sentence
	IntentViolation         Intent = 4 // rule-breaking content
	IntentOffTopic          Intent = 5 // chatter the bot stays out of
	IntentWordLookup        Intent = 6 // single word/phrase lookup
)

// IntentFromCode maps a classifier code to an Intent. Codes outside the
// taxonomy fall back to IntentOffTopic so a malformed oracle reply can never
// derail the pipeline.
func IntentFromCode(code int) Intent {
	if code < int(IntentGeneralInquiry) || code > int(IntentWordLookup) {
		return IntentOffTopic
	}
	return Intent(code)
}

func (i Intent) String() string {
	switch i {
	case IntentGeneralInquiry:
		return "general-inquiry"
	case IntentLearningContent:
		return "learning-content"
	case IntentGrammarCorrection:
		return "grammar-correction"
	case IntentViolation:
		return "violation"
	case IntentOffTopic:
		return "off-topic"
	case IntentWordLookup:
		return "word-lookup"
	default:
		return fmt.Sprintf("intent(%d)", int(i))
	}
}
