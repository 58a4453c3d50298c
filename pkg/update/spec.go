package update

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
)

// Kind classifies a version specifier.
type Kind int

const (
	// Absent means the URL has no specifier and floats to latest.
	Absent Kind = iota
	// Exact is a full semver version such as 2.1.0 or 1.0.0-beta.1.
	Exact
	// Range is a semver constraint such as ^2.1.0, ~1.2, >=1 <2, 16 or 1.x.
	Range
	// Tag is anything else: latest, next, beta.
	Tag
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Exact:
		return "exact"
	case Range:
		return "range"
	case Tag:
		return "tag"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// simpleRange is a single comparator: an optional operator followed by a
// possibly partial or wildcarded version.
var simpleRange = regexp.MustCompile(`^(\s*(?:\^|~>?|[<>]=?|=)?\s*v?)(\d+|[xX*])(?:\.(\d+|[xX*]))?(?:\.(\d+|[xX*]))?((?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?)(\s*)$`)

// leadingOp captures the operator a compound range starts with.
var leadingOp = regexp.MustCompile(`^\s*(?:\^|~>?|[<>]=?|=)?\s*`)

// firstVersion finds the first version-looking token in a range.
var firstVersion = regexp.MustCompile(`\d+(?:\.\d+)?(?:\.\d+)?`)

// Classify returns the kind of spec.
func Classify(spec string) Kind {
	switch {
	case spec == "":
		return Absent
	case isExact(spec):
		return Exact
	}
	if _, err := semver.NewConstraint(spec); err == nil {
		return Range
	}
	return Tag
}

func isExact(spec string) bool {
	_, err := semver.StrictNewVersion(strings.TrimPrefix(spec, "v"))
	return err == nil
}

// Next returns the specifier spec should become when latest is the newest
// published version. It returns spec itself when no rewrite is due, and an
// INVALID_VERSION error when latest is not a semver version.
func Next(spec, latest string) (string, error) {
	lv, err := semver.NewVersion(latest)
	if err != nil {
		return "", cerrors.Wrap(cerrors.ErrCodeInvalidVersion, err, "resolved version %q is not semver", latest)
	}

	switch Classify(spec) {
	case Exact:
		cur, _ := semver.StrictNewVersion(strings.TrimPrefix(spec, "v"))
		if !lv.GreaterThan(cur) {
			return spec, nil
		}
		if strings.HasPrefix(spec, "v") {
			return "v" + strings.TrimPrefix(latest, "v"), nil
		}
		return latest, nil
	case Range:
		return nextRange(spec, lv), nil
	}
	return spec, nil
}

func nextRange(spec string, latest *semver.Version) string {
	c, err := semver.NewConstraint(spec)
	if err != nil || c.Check(latest) {
		return spec
	}

	m := simpleRange.FindStringSubmatch(spec)
	if m == nil {
		// Compound ranges collapse to their leading operator plus latest.
		if floor := firstVersion.FindString(spec); floor != "" && above(floor, latest) {
			return spec
		}
		return leadingOp.FindString(spec) + latest.String()
	}

	prefix, parts, trailing := m[1], []string{m[2], m[3], m[4]}, m[6]
	if isWildcard(parts[0]) {
		return spec
	}
	op := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(prefix), "v"))
	if op != "<" && op != "<=" && above(floorOf(parts), latest) {
		return spec
	}

	numbers := []uint64{latest.Major(), latest.Minor(), latest.Patch()}
	full := parts[2] != "" && !isWildcard(parts[1]) && !isWildcard(parts[2])
	if full || latest.Prerelease() != "" {
		return prefix + latest.String() + trailing
	}

	var out []string
	wild := false
	for i, p := range parts {
		if p == "" {
			break
		}
		if wild || isWildcard(p) {
			wild = true
			out = append(out, p)
			continue
		}
		out = append(out, fmt.Sprint(numbers[i]))
	}
	return prefix + strings.Join(out, ".") + trailing
}

func isWildcard(s string) bool {
	return s == "x" || s == "X" || s == "*"
}

// floorOf returns the lowest version a partial version admits.
func floorOf(parts []string) string {
	out := make([]string, 3)
	for i, p := range parts {
		if p == "" || isWildcard(p) {
			p = "0"
		}
		out[i] = p
	}
	return strings.Join(out, ".")
}

// above reports whether version v is greater than latest.
func above(v string, latest *semver.Version) bool {
	fv, err := semver.NewVersion(v)
	return err == nil && fv.GreaterThan(latest)
}
