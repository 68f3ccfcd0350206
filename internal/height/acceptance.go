package height

import "fmt"

// AcceptanceRule decides whether a polled height counts as the new block.
type AcceptanceRule int

const (
	// AcceptExactIncrement accepts only a polled height of exactly start+1.
	AcceptExactIncrement AcceptanceRule = iota

	// AcceptAtLeast accepts any polled height above start.
	AcceptAtLeast
)

// Config names of the acceptance rules.
const (
	ExactIncrementName = "exact"
	AtLeastName        = "at-least"
)

// String returns the config name of the rule.
func (r AcceptanceRule) String() string {
	switch r {
	case AcceptExactIncrement:
		return ExactIncrementName
	case AcceptAtLeast:
		return AtLeastName
	default:
		return fmt.Sprintf("AcceptanceRule(%d)", int(r))
	}
}

// ParseAcceptanceRule parses a config value. An empty value is exact.
func ParseAcceptanceRule(s string) (AcceptanceRule, error) {
	switch s {
	case "", ExactIncrementName:
		return AcceptExactIncrement, nil
	case AtLeastName:
		return AcceptAtLeast, nil
	default:
		return 0, fmt.Errorf("unknown acceptance rule %q", s)
	}
}

func (r AcceptanceRule) accepts(start, polled int64) bool {
	if r == AcceptAtLeast {
		return polled > start
	}
	return polled == start+1
}
