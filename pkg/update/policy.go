package update

import (
	"fmt"
	"strings"

	"github.com/matzehuels/cdnm/pkg/cdn"
)

// FailurePolicy decides how per-package resolver failures affect a call.
type FailurePolicy int

const (
	// AllOrNothing fails the whole call if any package fails. Nothing is
	// rewritten.
	AllOrNothing FailurePolicy = iota

	// BestEffort rewrites every package that resolved and reports the
	// failures next to the partial result.
	BestEffort
)

func (p FailurePolicy) String() string {
	switch p {
	case AllOrNothing:
		return "all"
	case BestEffort:
		return "best-effort"
	}
	return fmt.Sprintf("FailurePolicy(%d)", int(p))
}

// ParseFailurePolicy parses "all" or "best-effort".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return AllOrNothing, nil
	case "best-effort":
		return BestEffort, nil
	}
	return 0, fmt.Errorf("unknown failure policy %q (want all or best-effort)", s)
}

// Mode bundles the extraction and failure policies for one input shape.
type Mode struct {
	Extract  cdn.Policy
	Failures FailurePolicy
}

// TextMode rejects conflicts and malformed references and fails on any
// resolver failure.
func TextMode() Mode {
	return Mode{Extract: cdn.TextPolicy(), Failures: AllOrNothing}
}

// NodeMode treats every element independently.
func NodeMode() Mode {
	return Mode{Extract: cdn.NodePolicy(), Failures: BestEffort}
}
