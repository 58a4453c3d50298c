package cdn

import (
	"fmt"
	"strings"
)

// ConflictPolicy decides what happens when one package appears with two
// different specifiers.
type ConflictPolicy int

const (
	// ConflictReject fails extraction with CONFLICTING_VERSIONS.
	ConflictReject ConflictPolicy = iota

	// ConflictIndependent keeps every occurrence. Each is updated on its own.
	ConflictIndependent
)

// MalformedPolicy decides what happens when a URL on an allow-listed host
// does not follow the package grammar.
type MalformedPolicy int

const (
	// MalformedFail fails extraction with MALFORMED_REFERENCE.
	MalformedFail MalformedPolicy = iota

	// MalformedSkip ignores the URL and leaves it untouched.
	MalformedSkip
)

// Policy configures an [Extractor].
type Policy struct {
	Conflicts ConflictPolicy
	Malformed MalformedPolicy
}

// TextPolicy is the default for text documents: conflicts and malformed
// references both fail.
func TextPolicy() Policy {
	return Policy{Conflicts: ConflictReject, Malformed: MalformedFail}
}

// NodePolicy is the default for node trees: every element stands alone.
func NodePolicy() Policy {
	return Policy{Conflicts: ConflictIndependent, Malformed: MalformedSkip}
}

func (p ConflictPolicy) String() string {
	switch p {
	case ConflictReject:
		return "reject"
	case ConflictIndependent:
		return "independent"
	}
	return fmt.Sprintf("ConflictPolicy(%d)", int(p))
}

func (p MalformedPolicy) String() string {
	switch p {
	case MalformedFail:
		return "fail"
	case MalformedSkip:
		return "skip"
	}
	return fmt.Sprintf("MalformedPolicy(%d)", int(p))
}

// ParseConflictPolicy parses "reject" or "independent".
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reject":
		return ConflictReject, nil
	case "independent":
		return ConflictIndependent, nil
	}
	return 0, fmt.Errorf("unknown conflict policy %q (want reject or independent)", s)
}

// ParseMalformedPolicy parses "fail" or "skip".
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail":
		return MalformedFail, nil
	case "skip":
		return MalformedSkip, nil
	}
	return 0, fmt.Errorf("unknown malformed policy %q (want fail or skip)", s)
}
