package grading

import (
	"math"

	"quiz_review_backend/internal/model"
)

// Policy is the tunable part of the classifier: score rounding granularity
// and the ambiguous-band cutoffs that drive review priority. It is loaded
// from config and may be hot-reloaded at runtime.
type Policy struct {
	// RoundingStep is the score granularity, e.g. 0.5 for half points.
	RoundingStep float64
	// AutoAcceptFullMatch excludes full-match keyword answers from the
	// review queue entirely.
	AutoAcceptFullMatch bool
	// AmbiguousLow / AmbiguousHigh bound the fraction band (exclusive)
	// that is considered ambiguous and queued with HIGH priority.
	AmbiguousLow  float64
	AmbiguousHigh float64
}

func DefaultPolicy() Policy {
	return Policy{
		RoundingStep:        0.5,
		AutoAcceptFullMatch: true,
		AmbiguousLow:        0,
		AmbiguousHigh:       1,
	}
}

// Normalized returns the policy with unusable values replaced by defaults,
// so a partially filled config section cannot break scoring.
func (p Policy) Normalized() Policy {
	d := DefaultPolicy()
	if p.RoundingStep <= 0 {
		p.RoundingStep = d.RoundingStep
	}
	if p.AmbiguousHigh <= p.AmbiguousLow {
		p.AmbiguousLow = d.AmbiguousLow
		p.AmbiguousHigh = d.AmbiguousHigh
	}
	return p
}

// RoundToStep rounds half-up to the nearest multiple of step.
func RoundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// ClampScore forces a score into [0, max].
func ClampScore(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// PriorityForFraction maps a keyword match fraction to a queue priority:
// no keywords found is MEDIUM (likely blank or off-topic, must be confirmed
// before a permanent zero), the ambiguous middle band is HIGH, a full match
// is LOW.
func (p Policy) PriorityForFraction(fraction float64) model.ReviewPriority {
	p = p.Normalized()
	switch {
	case fraction <= p.AmbiguousLow:
		return model.PriorityMedium
	case fraction >= p.AmbiguousHigh:
		return model.PriorityLow
	default:
		return model.PriorityHigh
	}
}

// AnswerPriority computes the queue priority for one answer. Manual-only
// answers carry no match signal and sit at MEDIUM; fallback answers where
// automation failed need prompt attention and sit at HIGH.
func AnswerPriority(a *model.Answer, p Policy) model.ReviewPriority {
	switch a.Method {
	case model.MethodManual:
		return model.PriorityMedium
	case model.MethodManualFallback:
		return model.PriorityHigh
	case model.MethodKeywordBased:
		if a.MatchFraction != nil {
			return p.PriorityForFraction(*a.MatchFraction)
		}
		return model.PriorityHigh
	}
	return model.PriorityMedium
}

// NeedsReview is the single derived predicate for "still awaiting human
// disposition". Both the review queue and the submission detail view go
// through it so the two can never drift.
func NeedsReview(a *model.Answer, p Policy) bool {
	if a.ReviewedAt != nil {
		return false
	}
	switch a.Method {
	case model.MethodManual, model.MethodManualFallback:
		return true
	case model.MethodKeywordBased:
		p = p.Normalized()
		if p.AutoAcceptFullMatch && a.MatchFraction != nil && *a.MatchFraction >= p.AmbiguousHigh {
			return false
		}
		return true
	}
	return false
}
