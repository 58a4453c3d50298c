package cdn

import "slices"

// Set is the result of an extraction: every reference in document order,
// plus the package names in order of first appearance.
type Set struct {
	refs  []Reference
	names []string
	specs map[string]string
}

func newSet() *Set {
	return &Set{specs: make(map[string]string)}
}

// add records ref. Under ConflictReject a second specifier for a known
// package is an error.
func (s *Set) add(ref Reference, p ConflictPolicy) error {
	if prev, ok := s.specs[ref.Name]; ok {
		if prev != ref.Spec && p == ConflictReject {
			return conflictError(ref.Name, prev, ref.Spec)
		}
	} else {
		s.specs[ref.Name] = ref.Spec
		s.names = append(s.names, ref.Name)
	}
	s.refs = append(s.refs, ref)
	return nil
}

// Len returns the number of references, counting repeats.
func (s *Set) Len() int { return len(s.refs) }

// References returns every reference in document order.
func (s *Set) References() []Reference { return slices.Clone(s.refs) }

// Names returns the distinct package names in order of first appearance.
func (s *Set) Names() []string { return slices.Clone(s.names) }

// Spec returns the specifier of the first occurrence of name.
func (s *Set) Spec(name string) (string, bool) {
	spec, ok := s.specs[name]
	return spec, ok
}

// Dependencies maps each package name to the specifier of its first
// occurrence. Packages without a specifier map to "".
func (s *Set) Dependencies() map[string]string {
	out := make(map[string]string, len(s.specs))
	for k, v := range s.specs {
		out[k] = v
	}
	return out
}
