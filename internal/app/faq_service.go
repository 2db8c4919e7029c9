package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"community_whatsapp_bot/internal/domain/faq"
	"community_whatsapp_bot/internal/domain/message"

	"github.com/sirupsen/logrus"
)

const (
	// matchThreshold is the score a candidate must strictly exceed to be
	// accepted as the best match.
	matchThreshold = 0.5
	// keywordBonus is added when any entry keyword appears in the raw query.
	// Scores are intentionally not capped afterwards so a keyword hit can
	// outrank pure token overlap.
	keywordBonus = 0.3
	// maxSuggestions bounds the fallback list returned on no match.
	maxSuggestions = 5

	telemetryTimeout = 10 * time.Second
)

// MatchResult is the outcome of scoring a query against the knowledge base.
type MatchResult struct {
	Found       bool
	Entry       *faq.Entry
	Score       float64
	Confidence  int // Display percentage, clamped to 100
	Suggestions []string
}

// FAQReply is the formatted reply for one incoming question.
type FAQReply struct {
	Type        string // "answer" or "no_answer"
	Content     string
	Suggestions []string
}

// FAQService matches free-text questions against an in-memory snapshot of
// the knowledge base and manages the entries behind it. The snapshot is
// rebuilt from the store on startup and after every mutating operation;
// Reload is its only mutation path.
type FAQService struct {
	repo    faq.Repository
	msgRepo message.Repository
	logger  *logrus.Entry

	mu      sync.RWMutex
	entries []*faq.Entry

	// background runs the fire-and-forget telemetry writes (usage bumps,
	// interaction logs). Overridable in tests to make them synchronous.
	background func(func())
}

func NewFAQService(repo faq.Repository, msgRepo message.Repository, logger *logrus.Entry) *FAQService {
	return &FAQService{
		repo:       repo,
		msgRepo:    msgRepo,
		logger:     logger.WithField("component", "faq_service"),
		background: func(fn func()) { go fn() },
	}
}

// Reload replaces the in-memory snapshot with the current store contents.
func (s *FAQService) Reload(ctx context.Context) error {
	entries, err := s.repo.ListAll(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to reload knowledge base: %w", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.logger.WithField("entries", len(entries)).Info("Knowledge base reloaded")
	return nil
}

func (s *FAQService) snapshot() []*faq.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// FindAnswer scores the query against every knowledge-base entry and returns
// the best match, or usage-ranked suggestions when nothing clears the
// acceptance threshold.
func (s *FAQService) FindAnswer(ctx context.Context, query string) *MatchResult {
	queryTokens := tokenSet(query)
	lowerQuery := strings.ToLower(query)

	var bestMatch *faq.Entry
	var highestScore float64

	for _, entry := range s.snapshot() {
		score := jaccardSimilarity(queryTokens, tokenSet(entry.Question))

		for _, keyword := range entry.Keywords {
			if keyword != "" && strings.Contains(lowerQuery, strings.ToLower(keyword)) {
				score += keywordBonus
				break
			}
		}

		// Strict comparisons: ties keep the first candidate encountered and
		// a score of exactly 0.5 is rejected.
		if score > highestScore && score > matchThreshold {
			highestScore = score
			bestMatch = entry
		}
	}

	if bestMatch == nil {
		return &MatchResult{Found: false, Suggestions: s.Suggestions()}
	}

	// Usage accounting is best-effort telemetry off the reply path.
	matchedID := bestMatch.ID
	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryTimeout)
		defer cancel()
		if err := s.repo.IncrementUsage(ctx, matchedID); err != nil {
			s.logger.WithError(err).WithField("faq_id", matchedID).Error("Failed to increment usage count")
		}
	})

	confidence := int(math.Round(highestScore * 100))
	if confidence > 100 {
		confidence = 100
	}

	return &MatchResult{
		Found:      true,
		Entry:      bestMatch,
		Score:      highestScore,
		Confidence: confidence,
	}
}

// Suggestions returns up to five questions ordered by descending usage
// count. Ties keep their original relative order.
func (s *FAQService) Suggestions() []string {
	entries := s.snapshot()
	sorted := make([]*faq.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UsageCount > sorted[j].UsageCount
	})

	suggestions := make([]string, 0, maxSuggestions)
	for _, entry := range sorted {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, entry.Question)
	}
	return suggestions
}

// HandleIncomingQuestion wraps FindAnswer with the user-facing reply
// templates and interaction logging.
func (s *FAQService) HandleIncomingQuestion(ctx context.Context, userID int64, question string) *FAQReply {
	result := s.FindAnswer(ctx, question)

	if result.Found {
		reply := fmt.Sprintf("💡 *%s*\n\n%s\n\n_الثقة: %d%%_",
			result.Entry.Question, result.Entry.Answer, result.Confidence)

		s.logQueryInteraction(userID, question, result)

		return &FAQReply{Type: "answer", Content: reply}
	}

	var b strings.Builder
	b.WriteString("🤔 عذراً، لم أجد إجابة دقيقة لسؤالك.\n\nربما تقصد أحد هذه الأسئلة:\n\n")
	for i, q := range result.Suggestions {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
	}
	b.WriteString("\nأو يمكنك الرد بـ \"دعم\" للتواصل مع فريق الدعم.")

	return &FAQReply{Type: "no_answer", Content: b.String(), Suggestions: result.Suggestions}
}

func (s *FAQService) logQueryInteraction(userID int64, question string, result *MatchResult) {
	payload, err := json.Marshal(map[string]any{
		"question":   question,
		"answer":     result.Entry.Answer,
		"confidence": result.Confidence,
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode faq interaction payload")
		return
	}

	s.background(func() {
		ctx, cancel := context.WithTimeout(context.Background(), telemetryTimeout)
		defer cancel()
		i := &message.Interaction{UserID: userID, Type: message.InteractionFAQQuery, Data: payload}
		if err := s.msgRepo.LogInteraction(ctx, i); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Error("Failed to log faq interaction")
		}
	})
}

// AddFAQ inserts a new entry and refreshes the snapshot.
func (s *FAQService) AddFAQ(ctx context.Context, question, answer string, keywords []string, category string) (*faq.Entry, error) {
	entry := &faq.Entry{
		Question: question,
		Answer:   answer,
		Keywords: keywords,
		Category: category,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add faq entry: %w", err)
	}

	if err := s.Reload(ctx); err != nil {
		s.logger.WithError(err).Error("Snapshot reload failed after faq insert")
	}
	s.logger.WithField("faq_id", entry.ID).Info("FAQ entry added")
	return entry, nil
}

// UpdateFAQ rewrites an existing entry and refreshes the snapshot.
func (s *FAQService) UpdateFAQ(ctx context.Context, id int64, question, answer string, keywords []string, category string) (*faq.Entry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Question = question
	entry.Answer = answer
	entry.Keywords = keywords
	entry.Category = category
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}

	if err := s.Reload(ctx); err != nil {
		s.logger.WithError(err).Error("Snapshot reload failed after faq update")
	}
	s.logger.WithField("faq_id", id).Info("FAQ entry updated")
	return entry, nil
}

// DeleteFAQ removes an entry and refreshes the snapshot.
func (s *FAQService) DeleteFAQ(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.Reload(ctx); err != nil {
		s.logger.WithError(err).Error("Snapshot reload failed after faq delete")
	}
	s.logger.WithField("faq_id", id).Info("FAQ entry deleted")
	return nil
}

// GetAll lists entries from the store, optionally filtered by category.
func (s *FAQService) GetAll(ctx context.Context, category string) ([]*faq.Entry, error) {
	return s.repo.ListAll(ctx, category)
}

// Search finds entries whose question, answer or keywords contain the term.
func (s *FAQService) Search(ctx context.Context, term string) ([]*faq.Entry, error) {
	return s.repo.Search(ctx, term)
}

// FAQStatistics aggregates usage for the admin dashboard.
type FAQStatistics struct {
	Stats *faq.Stats
	Top   []*faq.Entry
}

// Statistics returns knowledge-base totals and the ten most-used entries.
func (s *FAQService) Statistics(ctx context.Context) (*FAQStatistics, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopByUsage(ctx, 10)
	if err != nil {
		return nil, err
	}
	return &FAQStatistics{Stats: stats, Top: top}, nil
}
