package matching

import (
	"context"
	"strings"
	"time"

	"github.com/m-cagatin/rfmclothingshop/internal/apperr"
	"github.com/m-cagatin/rfmclothingshop/internal/cashflow"
	"github.com/m-cagatin/rfmclothingshop/internal/logging"
)

// Rule tags every statement line whose description contains Pattern with Category.
type Rule struct {
	ID        int64
	Pattern   string
	Category  string
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindCategory returns the category of the longest pattern contained in description,
	// or an empty string when no rule matches.
	FindCategory(ctx context.Context, description string) (string, error)
	CreateRule(ctx context.Context, rule *Rule) error
	ListRules(ctx context.Context) ([]*Rule, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns a category for a raw statement description, or an empty string.
func (s *Service) Suggest(ctx context.Context, description string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", nil
	}

	return s.repo.FindCategory(ctx, description)
}

// Categorize fills in missing categories from the learned rules. A failed lookup leaves the line
// uncategorized and is only logged.
func (s *Service) Categorize(ctx context.Context, lines []cashflow.ImportParams) {
	for i, line := range lines {
		if line.Category != "" {
			continue
		}

		category, err := s.Suggest(ctx, line.Description)
		if err != nil {
			logging.FromContext(ctx).Warn("category suggestion failed", "description", line.Description, "error", err)
			continue
		}

		lines[i].Category = category
	}
}

// Learn remembers that descriptions containing pattern belong to category.
func (s *Service) Learn(ctx context.Context, pattern, category string) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	category = strings.ToLower(strings.TrimSpace(category))

	if pattern == "" || category == "" {
		return nil, apperr.Validation("pattern and category are required")
	}

	rule := &Rule{Pattern: pattern, Category: category}
	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}

func (s *Service) Rules(ctx context.Context) ([]*Rule, error) {
	return s.repo.ListRules(ctx)
}
