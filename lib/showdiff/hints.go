package showdiff

import (
	"theaterwatch/lib/show"

	"github.com/antzucaro/matchr"
)

// DefaultHintThreshold is the minimum title similarity for a rename hint.
const DefaultHintThreshold = 0.9

// RenameHint suggests that a removed and an added show at the same venue
// may be one listing whose title changed. Hints never alter a ChangeSet.
type RenameHint struct {
	Removed    show.Show
	Added      show.Show
	Similarity float64
}

// RenameHints pairs each added show with the most similar unclaimed removed
// show at the same venue, keeping pairs at or above threshold. Pairs with
// identical keys are duplicate listings rather than renames and are skipped.
func RenameHints(cs ChangeSet, threshold float64) []RenameHint {
	if len(cs.Added) == 0 || len(cs.Removed) == 0 {
		return nil
	}

	type parts struct {
		venue string
		title string
	}
	removed := make([]parts, len(cs.Removed))
	for i, s := range cs.Removed {
		venue, title := keyParts(s)
		removed[i] = parts{venue: venue, title: title}
	}
	claimed := make(map[int]struct{})

	var result []RenameHint
	for _, added := range cs.Added {
		venue, title := keyParts(added)
		if title == "" {
			continue
		}

		best := -1
		var bestSimilarity float64
		for i, candidate := range removed {
			if _, taken := claimed[i]; taken {
				continue
			}
			if candidate.venue != venue || candidate.title == "" || candidate.title == title {
				continue
			}
			similarity := matchr.JaroWinkler(title, candidate.title, false)
			if similarity > bestSimilarity {
				bestSimilarity = similarity
				best = i
			}
		}

		if best >= 0 && bestSimilarity >= threshold {
			claimed[best] = struct{}{}
			result = append(result, RenameHint{
				Removed:    cs.Removed[best],
				Added:      added,
				Similarity: bestSimilarity,
			})
		}
	}
	return result
}
