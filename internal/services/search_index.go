package services

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/uwdate/review-backend/internal/models"
	"github.com/uwdate/review-backend/internal/store"
)

const MinQueryLength = 2

// SearchIndex scans the approved partition in insertion order.
type SearchIndex struct {
	partitions *store.Partitions
}

func NewSearchIndex(partitions *store.Partitions) *SearchIndex {
	return &SearchIndex{partitions: partitions}
}

// Search matches query, case-insensitively, as a substring of the real or
// masked target name. A result carries the real name only when the query
// equals it exactly; stored records are never modified.
func (s *SearchIndex) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(term) < MinQueryLength {
		return nil, invalid("Search query too short", "q")
	}

	records, err := s.partitions.ReadApproved(ctx)
	if err != nil {
		slog.Error("failed to read approved reviews", "action", "search", "error", err)
		records = nil
	}

	results := make([]models.PublicReview, 0)
	for i := range records {
		r := &records[i]
		if r.Status != models.StatusApproved || !r.MatchesName(term) {
			continue
		}
		exact := strings.ToLower(r.TargetInfo.Name) == term
		pub := r.Public()
		pub.ShowFullName = &exact
		if exact {
			pub.TargetInfo.Name = r.TargetInfo.Name
		}
		results = append(results, pub)
	}

	return &models.SearchResult{
		Query:   query,
		Results: results,
		Count:   len(results),
	}, nil
}
