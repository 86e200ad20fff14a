package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name         string
		rawText      string
		keywords     []string
		wantFound    []string
		wantMissing  []string
		wantFraction float64
	}{
		{
			name:         "all keywords present",
			rawText:      "Recursion needs a base case to terminate",
			keywords:     []string{"recursion", "base case"},
			wantFound:    []string{"recursion", "base case"},
			wantMissing:  []string{},
			wantFraction: 1.0,
		},
		{
			name:         "case insensitive",
			rawText:      "A STACK is LIFO",
			keywords:     []string{"stack", "lifo"},
			wantFound:    []string{"stack", "lifo"},
			wantMissing:  []string{},
			wantFraction: 1.0,
		},
		{
			name:         "partial match",
			rawText:      "a stack grows and shrinks at one end",
			keywords:     []string{"stack", "queue"},
			wantFound:    []string{"stack"},
			wantMissing:  []string{"queue"},
			wantFraction: 0.5,
		},
		{
			name:         "no keywords found",
			rawText:      "I do not know",
			keywords:     []string{"pointer", "heap"},
			wantFound:    []string{},
			wantMissing:  []string{"pointer", "heap"},
			wantFraction: 0,
		},
		{
			name:         "empty text",
			rawText:      "",
			keywords:     []string{"loop"},
			wantFound:    []string{},
			wantMissing:  []string{"loop"},
			wantFraction: 0,
		},
		{
			name:         "whitespace only text",
			rawText:      "   \n\t ",
			keywords:     []string{"loop"},
			wantFound:    []string{},
			wantMissing:  []string{"loop"},
			wantFraction: 0,
		},
		{
			name:         "boundary prefix match allowed",
			rawText:      "recursions everywhere",
			keywords:     []string{"recursion"},
			wantFound:    []string{"recursion"},
			wantMissing:  []string{},
			wantFraction: 1.0,
		},
		{
			name:         "mid-word occurrence rejected",
			rawText:      "the precursion of events",
			keywords:     []string{"cursion"},
			wantFound:    []string{},
			wantMissing:  []string{"cursion"},
			wantFraction: 0,
		},
		{
			name:         "found ordered by first occurrence",
			rawText:      "the base case stops the recursion",
			keywords:     []string{"recursion", "base case"},
			wantFound:    []string{"base case", "recursion"},
			wantMissing:  []string{},
			wantFraction: 1.0,
		},
		{
			name:         "duplicate keywords collapse",
			rawText:      "a loop repeats",
			keywords:     []string{"loop", "Loop", "loop"},
			wantFound:    []string{"loop"},
			wantMissing:  []string{},
			wantFraction: 1.0,
		},
		{
			name:         "multi-word keyword across collapsed whitespace",
			rawText:      "needs a base\n  case here",
			keywords:     []string{"base case"},
			wantFound:    []string{"base case"},
			wantMissing:  []string{},
			wantFraction: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(tt.rawText, tt.keywords)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, got.Found)
			assert.Equal(t, tt.wantMissing, got.Missing)
			assert.InDelta(t, tt.wantFraction, got.Fraction, 1e-9)
		})
	}
}

func TestMatchDeterministic(t *testing.T) {
	first, err := Match("Recursion needs a base case to terminate", []string{"recursion", "base case"})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Match("Recursion needs a base case to terminate", []string{"recursion", "base case"})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatchBadConfig(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
	}{
		{name: "nil keywords", keywords: nil},
		{name: "empty keywords", keywords: []string{}},
		{name: "blank keywords", keywords: []string{"", "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match("any text", tt.keywords)
			assert.ErrorIs(t, err, ErrBadKeywordConfig)
		})
	}
}
