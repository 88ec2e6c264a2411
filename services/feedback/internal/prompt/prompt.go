// Package prompt builds the instruction strings sent to the LLM. Every
// function is pure: the same input always yields the same prompt.
package prompt

import (
	"fmt"
	"strings"

	"github.com/utafrali/FeedbackAI/services/feedback/internal/domain"
)

const jsonShape = `{
  "predicted_stars": <number between 1-5>,
  "explanation": "%s"
}`

// ZeroShot asks for a rating with instructions only.
func ZeroShot(review string) string {
	return fmt.Sprintf(`You are a review rating classifier. Analyze the following Yelp review and predict the star rating (1-5 stars).

Review: %q

Return your response as a JSON object with this exact format:
%s

Only return the JSON object, nothing else.`, review, fmt.Sprintf(jsonShape, "<brief reasoning for the assigned rating>"))
}

type example struct {
	review      string
	stars       int
	explanation string
}

// fewShotExamples holds one calibrated example per rating, 1 through 5.
var fewShotExamples = [...]example{
	{"Absolutely terrible experience. Food was cold, service was rude, and the place was dirty. Never coming back.", 1, "Extremely negative review mentioning multiple severe issues."},
	{"Not impressed. The food was mediocre and overpriced. Server seemed disinterested.", 2, "Predominantly negative with multiple complaints but not extremely hostile."},
	{"It was okay. Nothing special but nothing terrible either. Average food, average service.", 3, "Neutral review indicating average experience across the board."},
	{"Really enjoyed our meal! Good food, friendly staff, and nice atmosphere. Would come again.", 4, "Positive review with multiple compliments and intent to return."},
	{"Outstanding! Best meal I've had in years. Incredible service, amazing flavors, perfect ambiance. Absolutely phenomenal!", 5, "Extremely positive with superlatives and enthusiasm throughout."},
}

// FewShot embeds five worked examples before the target review.
func FewShot(review string) string {
	var examples strings.Builder
	for _, ex := range fewShotExamples {
		fmt.Fprintf(&examples, "Review: %q\nOutput: {\"predicted_stars\": %d, \"explanation\": %q}\n\n", ex.review, ex.stars, ex.explanation)
	}
	return fmt.Sprintf(`You are a review rating classifier. Based on the examples below, predict the star rating (1-5) for the given review.

EXAMPLES:

%sNOW CLASSIFY THIS REVIEW:
Review: %q

Return only the JSON object with predicted_stars and explanation.`, examples.String(), review)
}

// ChainOfThought walks the model through six reasoning steps before it
// emits the rating.
func ChainOfThought(review string) string {
	return fmt.Sprintf(`You are a review rating classifier. Analyze the following review step-by-step to predict its star rating (1-5).

Review: %q

Think through this systematically:
1. Identify the overall sentiment (positive, negative, neutral)
2. Note specific positive aspects mentioned
3. Note specific negative aspects mentioned
4. Consider the intensity of language used
5. Determine if there's intent to return/recommend
6. Based on these factors, predict the star rating

Return your response as a JSON object:
%s

Only return the JSON object.`, review, fmt.Sprintf(jsonShape, "<concise reasoning covering the key factors that led to this rating>"))
}

// ForApproach selects the prediction prompt for a. Unknown approaches fall
// back to few-shot; callers validate before getting here.
func ForApproach(a domain.Approach, review string) string {
	switch a {
	case domain.ApproachZeroShot:
		return ZeroShot(review)
	case domain.ApproachChainOfThought:
		return ChainOfThought(review)
	default:
		return FewShot(review)
	}
}

// Reply asks for a short, empathetic answer to the customer. The tone
// instructions branch on rating.
func Reply(rating int, review string) string {
	tone := "Expresses appreciation and encouragement to return"
	if rating <= 3 {
		tone = "Apologizes and shows commitment to improvement"
	}
	return fmt.Sprintf(`You are a friendly customer service representative. A customer has left a %d-star review.

Review: %q

Generate a personalized, empathetic response that:
1. Thanks the customer for their feedback
2. Acknowledges their specific experience
3. %s

Keep the response warm, professional, and concise (2-3 sentences).`, rating, review, tone)
}

// Summary asks for a one-sentence summary.
func Summary(review string) string {
	return fmt.Sprintf(`Provide a brief 1-sentence summary of this customer review, highlighting the key point:

Review: %q

Summary:`, review)
}

// Actions asks for two or three bullet-point next steps in the "• " format.
func Actions(rating int, review string) string {
	return fmt.Sprintf(`Based on this %d-star customer review, suggest 2-3 specific, actionable next steps for the business:

Review: %q

Provide concrete actions the business should take. Be specific and practical.
Format your response EXACTLY like this:
• First action point
• Second action point
• Third action point

Keep each point concise (1-2 sentences max).`, rating, review)
}
