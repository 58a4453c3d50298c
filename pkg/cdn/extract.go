package cdn

import (
	"errors"

	"github.com/charmbracelet/log"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
)

// noSpec is how an absent specifier is shown in conflict messages.
const noSpec = "<none>"

// Extractor finds package references in a [Source].
type Extractor struct {
	grammar *Grammar
	policy  Policy
	logger  *log.Logger
}

// NewExtractor returns an extractor for grammar g. A nil logger uses
// log.Default().
func NewExtractor(g *Grammar, p Policy, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{grammar: g, policy: p, logger: logger}
}

// Grammar returns the grammar the extractor parses with.
func (e *Extractor) Grammar() *Grammar { return e.grammar }

// Policy returns the extractor's policy.
func (e *Extractor) Policy() Policy { return e.policy }

// Extract returns every reference in src. Extraction is pure: src is
// only read.
func (e *Extractor) Extract(src Source) (*Set, error) {
	set := newSet()
	for _, c := range src.Candidates(e.grammar) {
		ref, err := e.grammar.Parse(c.URL)
		if errors.Is(err, ErrNotCDN) {
			continue
		}
		if err != nil {
			if e.policy.Malformed == MalformedSkip {
				e.logger.Debug("skipping malformed reference", "url", c.URL)
				continue
			}
			return nil, err
		}
		ref.Start, ref.End = c.Start, c.End
		ref.Node, ref.Attr = c.Node, c.Attr
		if err := set.add(ref, e.policy.Conflicts); err != nil {
			return nil, err
		}
	}
	e.logger.Debug("extracted references", "refs", set.Len(), "packages", len(set.names))
	return set, nil
}

func conflictError(name, a, b string) error {
	return cerrors.ForPackage(name, cerrors.New(cerrors.ErrCodeConflictingVersions,
		"%s must not have multiple versions, found %s and %s", name, displaySpec(a), displaySpec(b)))
}

func displaySpec(s string) string {
	if s == "" {
		return noSpec
	}
	return s
}
