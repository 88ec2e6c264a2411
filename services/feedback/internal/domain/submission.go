package domain

import "time"

// TimestampLayout is the fixed format submissions are stamped with.
const TimestampLayout = "2006-01-02 15:04:05"

// Review length limits, counted in characters after trimming.
const (
	MinReviewLength = 1
	MaxReviewLength = 5000
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Submission is one persisted customer review together with the generated
// reply and the optional enrichment fields.
type Submission struct {
	Timestamp          string `json:"timestamp"`
	Rating             int    `json:"rating"`
	Review             string `json:"review"`
	AIResponse         string `json:"ai_response"`
	AISummary          string `json:"ai_summary"`
	RecommendedActions string `json:"recommended_actions"`
}

// Stamp sets the submission timestamp from t.
func (s *Submission) Stamp(t time.Time) {
	s.Timestamp = t.Format(TimestampLayout)
}

// IsEnriched reports whether a summary has already been generated.
func (s *Submission) IsEnriched() bool {
	return s.AISummary != ""
}

// IsValidRating checks whether r is within the accepted star range.
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
