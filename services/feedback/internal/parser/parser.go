// Package parser turns a raw LLM reply into a PredictionResult. It never
// fails: anything that cannot be read as a valid prediction degrades to a
// fixed fallback.
package parser

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

// FallbackStars is the rating reported when no valid prediction is available.
const FallbackStars = 3

// ReasonUnparseable explains a reply that decoded but was not a valid prediction.
const ReasonUnparseable = "Could not parse prediction"

// ErrorReason formats the explanation used when decoding or the LLM call failed.
func ErrorReason(err error) string {
	return "Error: " + err.Error()
}

// Fallback returns the degraded result for approach a.
func Fallback(a domain.Approach, reason string) domain.PredictionResult {
	return domain.PredictionResult{
		PredictedStars: FallbackStars,
		Explanation:    reason,
		ApproachUsed:   a,
		JSONValid:      false,
	}
}

// Parse extracts {predicted_stars, explanation} from reply. The result is
// JSONValid only when both keys are present and the star count coerces to
// an integer in [1, 5].
func Parse(reply string, a domain.Approach) domain.PredictionResult {
	payload := extractPayload(reply)

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return Fallback(a, ErrorReason(err))
	}
	if dec.More() {
		return Fallback(a, "Error: unexpected data after JSON object")
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return Fallback(a, ReasonUnparseable)
	}

	rawStars, hasStars := obj["predicted_stars"]
	rawExplanation, hasExplanation := obj["explanation"]
	if !hasStars || !hasExplanation {
		return Fallback(a, ReasonUnparseable)
	}

	stars, ok := coerceStars(rawStars)
	if !ok || !domain.IsValidRating(stars) {
		return Fallback(a, ReasonUnparseable)
	}

	return domain.PredictionResult{
		PredictedStars: stars,
		Explanation:    explanationText(rawExplanation),
		ApproachUsed:   a,
		JSONValid:      true,
	}
}

// coerceStars truncates a JSON number toward zero or parses a string holding
// an integer. Strings with a fractional part are rejected.
func coerceStars(v any) (int, bool) {
	switch x := v.(type) {
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), true
		}
		f, err := x.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		return int(math.Trunc(f)), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func explanationText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}
