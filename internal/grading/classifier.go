package grading

import "quiz_review_backend/internal/model"

// Outcome is the classifier's verdict for one answer at submission time.
type Outcome struct {
	Score  float64
	Method model.ScoringMethod
	Match  *model.KeywordMatch
	// FallbackReason is set when automation was configured but could not
	// run; surfaced to the reviewer alongside the queue entry.
	FallbackReason string
}

// Classify decides the scoring method and provisional score for a raw
// answer. MANUAL questions always score 0 pending review. KEYWORD_BASED
// questions run the matcher and map the match fraction onto the question's
// max score using the policy's rounding step; a broken keyword config
// degrades to MANUAL_FALLBACK instead of failing the submission.
func Classify(rawText string, q *model.Question, p Policy) Outcome {
	if q.Type != model.ScoringTypeKeywordBased {
		return Outcome{Score: 0, Method: model.MethodManual}
	}

	res, err := Match(rawText, q.Keywords)
	if err != nil {
		return Outcome{
			Score:          0,
			Method:         model.MethodManualFallback,
			FallbackReason: err.Error(),
		}
	}

	p = p.Normalized()
	score := ClampScore(RoundToStep(res.Fraction*q.MaxScore, p.RoundingStep), q.MaxScore)
	return Outcome{
		Score:  score,
		Method: model.MethodKeywordBased,
		Match: &model.KeywordMatch{
			Found:    res.Found,
			Missing:  res.Missing,
			Fraction: res.Fraction,
		},
	}
}
