package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwdate/review-backend/internal/models"
)

func TestSubmitReviewRequestTags(t *testing.T) {
	tests := []struct {
		name string
		body string
		want TagList
	}{
		{"string", `{"tags":"PUA,幽默"}`, TagList{"PUA,幽默"}},
		{"list", `{"tags":["PUA","幽默"]}`, TagList{"PUA", "幽默"}},
		{"null", `{"tags":null}`, nil},
		{"absent", `{}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SubmitReviewRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.Tags)
		})
	}

	var req SubmitReviewRequest
	assert.Error(t, json.Unmarshal([]byte(`{"tags":42}`), &req))
}

func TestSubmitReviewRequestFlags(t *testing.T) {
	var req SubmitReviewRequest
	require.NoError(t, json.Unmarshal([]byte(`{"truthDeclaration":"on","privacyAgreement":true}`), &req))
	assert.True(t, bool(req.TruthDeclaration))
	assert.True(t, bool(req.PrivacyAgreement))

	req = SubmitReviewRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"truthDeclaration":"false","privacyAgreement":null}`), &req))
	assert.False(t, bool(req.TruthDeclaration))
	assert.False(t, bool(req.PrivacyAgreement))
}

func TestParseFlag(t *testing.T) {
	for _, s := range []string{"on", "true", "1", " TRUE ", "yes"} {
		assert.True(t, ParseFlag(s), s)
	}
	for _, s := range []string{"", "off", "0", "false", "nope"} {
		assert.False(t, ParseFlag(s), s)
	}
}

func TestNewStatsResponse(t *testing.T) {
	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	got := NewStatsResponse(models.Stats{ApprovedCount: 3, PendingCount: 1, LastUpdate: ts})

	assert.Equal(t, StatsResponse{TotalReviews: 3, PendingReviews: 1, LastUpdate: ts.UnixMilli()}, got)
}
