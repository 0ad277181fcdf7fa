// Package showdiff pairs shows across two snapshots and classifies each one
// as added, removed, updated or unchanged.
package showdiff

import (
	"fmt"
	"theaterwatch/lib/show"
)

// FieldDelta is one changed field of a matched show.
type FieldDelta struct {
	Field show.Field
	Old   string
	New   string
}

func (d FieldDelta) String() string {
	return fmt.Sprintf("%s: %q -> %q", d.Field, d.Old, d.New)
}

// Match pairs the previous and current version of the same show.
type Match struct {
	Previous show.Show
	Current  show.Show
	// Deltas is empty for unchanged shows.
	Deltas []FieldDelta
}

// ChangeSet is the classified result of one comparison. Every current show
// is in exactly one of Added, Updated or Unchanged; every previous show is in
// exactly one of Removed, Updated or Unchanged.
type ChangeSet struct {
	Added     []show.Show
	Removed   []show.Show
	Updated   []Match
	Unchanged []Match
}

// Counts summarises the size of each group.
type Counts struct {
	Added     int
	Removed   int
	Updated   int
	Unchanged int
}

func (c ChangeSet) Counts() Counts {
	return Counts{
		Added:     len(c.Added),
		Removed:   len(c.Removed),
		Updated:   len(c.Updated),
		Unchanged: len(c.Unchanged),
	}
}

func (c Counts) String() string {
	return fmt.Sprintf(
		"%d new, %d updated, %d removed, %d unchanged",
		c.Added, c.Updated, c.Removed, c.Unchanged,
	)
}

// HasChanges reports whether anything was added, removed or updated.
func (c ChangeSet) HasChanges() bool {
	return len(c.Added) > 0 || len(c.Removed) > 0 || len(c.Updated) > 0
}
