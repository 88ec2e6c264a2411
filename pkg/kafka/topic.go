package kafka

// TopicPrefix namespaces every topic this project publishes to.
const TopicPrefix = "feedback"

// Topic builds a topic name of the form "<prefix>.<domain>.<action>",
// e.g. Topic("review", "submitted") = "feedback.review.submitted".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}
