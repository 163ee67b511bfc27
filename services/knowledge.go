package services

import (
	"log"
	"strings"

	"github.com/anasco119/QueriesShot/models"
	"github.com/anasco119/QueriesShot/repository"
)

// KnowledgeSnapshot is the read-only context handed to the response
// router: the stored Q/A pairs plus the latest broadcast-channel excerpts.
type KnowledgeSnapshot struct {
	FAQ      []models.FAQEntry
	Excerpts []string
}

// PromptSection renders the snapshot as the Arabic context block embedded
// in every generation prompt, mirroring the wording students see from the
// human teacher.
func (s KnowledgeSnapshot) PromptSection() string {
	var b strings.Builder
	for _, entry := range s.FAQ {
		b.WriteString("س: ")
		b.WriteString(entry.Question)
		b.WriteString("\nج: ")
		b.WriteString(entry.Answer)
		b.WriteString("\n\n")
	}
	for _, excerpt := range s.Excerpts {
		b.WriteString("معلومة من القناة: ")
		b.WriteString(excerpt)
		b.WriteString("\n\n")
	}
	return b.String()
}

// KnowledgeService assembles snapshots from the FAQ and channel stores.
// Snapshots are fetched fresh per request; the stores are read-mostly and
// safe for concurrent readers.
type KnowledgeService struct {
	faqRepo      repository.FAQRepository
	channelRepo  repository.ChannelRepository
	excerptLimit int
}

// NewKnowledgeService creates a KnowledgeService.
func NewKnowledgeService(faqRepo repository.FAQRepository, channelRepo repository.ChannelRepository, excerptLimit int) *KnowledgeService {
	if excerptLimit <= 0 {
		excerptLimit = 5
	}
	return &KnowledgeService{faqRepo: faqRepo, channelRepo: channelRepo, excerptLimit: excerptLimit}
}

// Snapshot fetches the current FAQ entries and recent channel excerpts.
// Store failures degrade to an empty section rather than failing the
// message: a reply without context beats no reply.
func (k *KnowledgeService) Snapshot() KnowledgeSnapshot {
	var snapshot KnowledgeSnapshot

	entries, err := k.faqRepo.ListAll()
	if err != nil {
		log.Printf("WARN: [Knowledge] Proceeding without FAQ context: %v", err)
	} else {
		snapshot.FAQ = entries
	}

	posts, err := k.channelRepo.Recent(k.excerptLimit)
	if err != nil {
		log.Printf("WARN: [Knowledge] Proceeding without channel excerpts: %v", err)
		return snapshot
	}
	for _, post := range posts {
		snapshot.Excerpts = append(snapshot.Excerpts, post.Text)
	}
	return snapshot
}
