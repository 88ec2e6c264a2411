package domain

import "fmt"

// Approach is a rating-prediction prompting strategy.
type Approach string

const (
	ApproachZeroShot       Approach = "zero-shot"
	ApproachFewShot        Approach = "few-shot"
	ApproachChainOfThought Approach = "chain-of-thought"
)

// DefaultApproach is used when a request does not name one.
const DefaultApproach = ApproachFewShot

// Approaches returns every supported approach in a stable order.
func Approaches() []Approach {
	return []Approach{ApproachZeroShot, ApproachFewShot, ApproachChainOfThought}
}

// IsValid reports whether a is one of the supported approaches.
func (a Approach) IsValid() bool {
	switch a {
	case ApproachZeroShot, ApproachFewShot, ApproachChainOfThought:
		return true
	}
	return false
}

// ParseApproach converts s to an Approach. An empty string yields the default.
func ParseApproach(s string) (Approach, error) {
	if s == "" {
		return DefaultApproach, nil
	}
	a := Approach(s)
	if !a.IsValid() {
		return "", fmt.Errorf("unknown approach %q: must be one of zero-shot, few-shot, chain-of-thought", s)
	}
	return a, nil
}
