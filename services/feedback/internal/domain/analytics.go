package domain

// RecentLimit is how many trailing submissions an analytics snapshot carries.
const RecentLimit = 10

// AnalyticsSnapshot summarizes every stored submission.
type AnalyticsSnapshot struct {
	TotalReviews       int            `json:"total_reviews"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
	RecentReviews      []Submission   `json:"recent_reviews"`
}

// EmptySnapshot returns the snapshot of an empty store. Collections are
// non-nil so they encode as {} and [].
func EmptySnapshot() *AnalyticsSnapshot {
	return &AnalyticsSnapshot{
		RatingDistribution: map[string]int{},
		RecentReviews:      []Submission{},
	}
}
