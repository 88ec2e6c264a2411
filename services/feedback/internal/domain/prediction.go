package domain

// PredictionResult is the structured outcome of a rating prediction.
// PredictedStars is always within [MinRating, MaxRating].
type PredictionResult struct {
	PredictedStars int      `json:"predicted_stars"`
	Explanation    string   `json:"explanation"`
	ApproachUsed   Approach `json:"approach_used"`
	JSONValid      bool     `json:"json_valid"`
}
