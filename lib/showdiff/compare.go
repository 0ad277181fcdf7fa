package showdiff

import (
	"fmt"
	"slices"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"
)

// InvalidComparisonError means a collection handed to Compare holds a record
// that never went through show.Normalize. It indicates a bug upstream.
type InvalidComparisonError struct {
	Side   string
	Index  int
	Record show.Show
}

func (e *InvalidComparisonError) Error() string {
	return fmt.Sprintf(
		"invalid comparison: %s record %d has neither title nor venue (source %q)",
		e.Side, e.Index, e.Record.Source,
	)
}

// Comparer classifies two snapshots. The zero value compares
// show.DefaultCompareFields.
type Comparer struct {
	fields []show.Field
}

// NewComparer builds a Comparer over the given fields, or the default field
// list when none are given.
func NewComparer(fields ...show.Field) Comparer {
	return Comparer{fields: slices.Clone(fields)}
}

// Fields returns the fields compared for matched shows.
func (c Comparer) Fields() []show.Field {
	if len(c.fields) == 0 {
		return show.DefaultCompareFields
	}
	return c.fields
}

// Compare classifies with the default field list.
func Compare(previous, current []show.Show) (ChangeSet, error) {
	return Comparer{}.Compare(previous, current)
}

// keyed holds the match keys of one collection and, per key, the index of the
// first show that carries it. Later shows with the same key are not eligible
// for pairing.
type keyed struct {
	keys  []string
	owner map[string]int
}

func index(shows []show.Show) keyed {
	k := keyed{
		keys:  make([]string, len(shows)),
		owner: make(map[string]int, len(shows)),
	}
	for i, s := range shows {
		key := MatchKey(s)
		k.keys[i] = key
		if key == "" {
			continue
		}
		if _, taken := k.owner[key]; !taken {
			k.owner[key] = i
		}
	}
	return k
}

// pairable reports whether the i-th show owns its key.
func (k keyed) pairable(i int) bool {
	key := k.keys[i]
	if key == "" {
		return false
	}
	return k.owner[key] == i
}

func validate(side string, shows []show.Show) error {
	for i, s := range shows {
		if !s.Valid() {
			return &InvalidComparisonError{Side: side, Index: i, Record: s}
		}
	}
	return nil
}

func (c Comparer) deltas(prev, curr show.Show) []FieldDelta {
	var out []FieldDelta
	for _, f := range c.Fields() {
		old := textutil.Collapse(prev.Get(f))
		next := textutil.Collapse(curr.Get(f))
		if old != next {
			out = append(out, FieldDelta{Field: f, Old: old, New: next})
		}
	}
	return out
}

// Compare classifies current against previous. A nil or empty previous
// collection is the first-run baseline where every current show is added.
//
// Output order follows input order: Added, Updated and Unchanged in current
// order, Removed in previous order.
func (c Comparer) Compare(previous, current []show.Show) (ChangeSet, error) {
	if err := validate("previous", previous); err != nil {
		return ChangeSet{}, err
	}
	if err := validate("current", current); err != nil {
		return ChangeSet{}, err
	}

	prev := index(previous)
	curr := index(current)

	var cs ChangeSet
	for i, s := range current {
		if !curr.pairable(i) {
			cs.Added = append(cs.Added, s)
			continue
		}
		pi, found := prev.owner[curr.keys[i]]
		if !found {
			cs.Added = append(cs.Added, s)
			continue
		}

		m := Match{
			Previous: previous[pi],
			Current:  s,
			Deltas:   c.deltas(previous[pi], s),
		}
		if len(m.Deltas) == 0 {
			cs.Unchanged = append(cs.Unchanged, m)
		} else {
			cs.Updated = append(cs.Updated, m)
		}
	}

	for i, s := range previous {
		if !prev.pairable(i) {
			cs.Removed = append(cs.Removed, s)
			continue
		}
		if _, found := curr.owner[prev.keys[i]]; !found {
			cs.Removed = append(cs.Removed, s)
		}
	}

	return cs, nil
}
