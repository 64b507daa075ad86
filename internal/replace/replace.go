package replace

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultCapacity is the number of pair rows the form shows.
const DefaultCapacity = 10

var ErrNoPairs = errors.New("no replacement pairs to apply")

// ValidationError is returned when a table cannot be built from the form.
type ValidationError struct {
	Reason string
	err    error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

type Pair struct {
	Pattern     string
	Replacement string
}

// Active reports whether the pair takes part in replacement.
func (p Pair) Active() bool {
	return p.Pattern != ""
}

// Blank reports whether both fields are empty.
func (p Pair) Blank() bool {
	return p.Pattern == "" && p.Replacement == ""
}

// Table is an immutable, ordered snapshot of active pairs.
type Table struct {
	pairs []Pair
}

// Result describes one pass of a table over a piece of text.
type Result struct {
	Original     string
	Text         string
	Replacements int
}

// Changed reports whether the pass produced different text.
func (r Result) Changed() bool {
	return r.Text != r.Original
}

// BuildTable keeps the pairs with a non-empty pattern, in order, up to capacity rows.
// A capacity <= 0 means DefaultCapacity.
func BuildTable(fields []Pair, capacity int) (*Table, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if len(fields) > capacity {
		fields = fields[:capacity]
	}

	pairs := make([]Pair, 0, len(fields))
	for _, f := range fields {
		if !f.Active() {
			continue
		}
		pairs = append(pairs, f)
	}

	if len(pairs) == 0 {
		return nil, errors.WithStack(&ValidationError{
			Reason: "complete at least one replacement pair",
			err:    ErrNoPairs,
		})
	}

	return &Table{pairs: pairs}, nil
}

// Pairs returns a copy of the table's pairs.
func (t *Table) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

func (t *Table) Len() int {
	return len(t.pairs)
}

// Apply runs every pair over text in order. Each pair sees the output of the
// previous one, so a replacement can be rewritten again by a later pair.
func (t *Table) Apply(text string) Result {
	res := Result{Original: text, Text: text}
	for _, p := range t.pairs {
		n := strings.Count(res.Text, p.Pattern)
		if n == 0 {
			continue
		}
		res.Text = strings.ReplaceAll(res.Text, p.Pattern, p.Replacement)
		res.Replacements += n
	}
	return res
}

// Invert swaps pattern and replacement of every pair in place.
func Invert(pairs []Pair) {
	for i := range pairs {
		pairs[i].Pattern, pairs[i].Replacement = pairs[i].Replacement, pairs[i].Pattern
	}
}

// ParsePair parses "from=to". The first '=' separates the fields.
func ParsePair(s string) (Pair, error) {
	from, to, ok := strings.Cut(s, "=")
	if !ok {
		return Pair{}, errors.Errorf("invalid pair %q: expected from=to", s)
	}
	return Pair{Pattern: from, Replacement: to}, nil
}
