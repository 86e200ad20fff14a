package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz_review_backend/internal/model"
)

func TestClassifyManualQuestion(t *testing.T) {
	q := &model.Question{Content: "Explain TCP handshake", MaxScore: 10, Type: model.ScoringTypeManual}
	out := Classify("three-way handshake with SYN, SYN-ACK, ACK", q, DefaultPolicy())

	assert.Equal(t, model.MethodManual, out.Method)
	assert.Equal(t, 0.0, out.Score)
	assert.Nil(t, out.Match)
	assert.Empty(t, out.FallbackReason)
}

func TestClassifyKeywordQuestion(t *testing.T) {
	tests := []struct {
		name       string
		rawText    string
		keywords   []string
		maxScore   float64
		wantScore  float64
		wantFrac   float64
		wantMethod model.ScoringMethod
	}{
		{
			name:       "half match scores half",
			rawText:    "a stack is involved",
			keywords:   []string{"stack", "queue"},
			maxScore:   10,
			wantScore:  5,
			wantFrac:   0.5,
			wantMethod: model.MethodKeywordBased,
		},
		{
			name:       "full match scores max",
			rawText:    "Recursion needs a base case to terminate",
			keywords:   []string{"recursion", "base case"},
			maxScore:   10,
			wantScore:  10,
			wantFrac:   1.0,
			wantMethod: model.MethodKeywordBased,
		},
		{
			name:       "no match scores zero",
			rawText:    "unrelated answer",
			keywords:   []string{"recursion", "base case"},
			maxScore:   10,
			wantScore:  0,
			wantFrac:   0,
			wantMethod: model.MethodKeywordBased,
		},
		{
			name:       "rounding to half point",
			rawText:    "pointer",
			keywords:   []string{"pointer", "heap", "stack"},
			maxScore:   10,
			wantScore:  3.5, // 10/3 = 3.33 -> 3.5
			wantFrac:   1.0 / 3.0,
			wantMethod: model.MethodKeywordBased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.Question{MaxScore: tt.maxScore, Type: model.ScoringTypeKeywordBased, Keywords: tt.keywords}
			out := Classify(tt.rawText, q, DefaultPolicy())

			assert.Equal(t, tt.wantMethod, out.Method)
			assert.InDelta(t, tt.wantScore, out.Score, 1e-9)
			require.NotNil(t, out.Match)
			assert.InDelta(t, tt.wantFrac, out.Match.Fraction, 1e-9)
		})
	}
}

func TestClassifyKeywordConfigFallback(t *testing.T) {
	q := &model.Question{MaxScore: 10, Type: model.ScoringTypeKeywordBased, Keywords: nil}
	out := Classify("any answer", q, DefaultPolicy())

	assert.Equal(t, model.MethodManualFallback, out.Method)
	assert.Equal(t, 0.0, out.Score)
	assert.Nil(t, out.Match)
	assert.Contains(t, out.FallbackReason, "keyword list")
}

func TestClassifyNeverExceedsMaxScore(t *testing.T) {
	// A coarse rounding step must not push the score past max.
	p := Policy{RoundingStep: 3, AutoAcceptFullMatch: true, AmbiguousHigh: 1}
	q := &model.Question{MaxScore: 10, Type: model.ScoringTypeKeywordBased, Keywords: []string{"loop"}}
	out := Classify("a loop", q, p)
	assert.LessOrEqual(t, out.Score, q.MaxScore)
}
