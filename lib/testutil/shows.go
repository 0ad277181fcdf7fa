package testutil

import (
	"fmt"
	"math/rand"
	"theaterwatch/lib/show"
)

var (
	randomTitles = []string{
		"Hamlet", "Hamlet - Press Night", "HAMLET", "Macbeth",
		"Romeo & Juliet", "Romeo and Juliet", "The Seagull", "Oklahoma!",
		"No Man’s Land", "No Man's Land", "Othello", "",
	}
	randomVenues = []string{
		"Donmar Warehouse", "donmar warehouse", "National Theatre",
		"The Bridge Theatre", "Soho Theatre Dean Street", "",
	}
	randomDates = []string{
		"", "1 Jan - 2 Feb 2025", "Until 30 March", "From 4 April",
	}
	randomPrices = []string{"", "£20", "From £15", "Sold Out"}
)

func pick(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}

// RandomShow returns a valid show drawn from a small vocabulary so that
// generated collections contain duplicates, case variants and noise
// suffixes.
func RandomShow(r *rand.Rand) show.Show {
	for {
		s := show.Show{
			Title:            pick(r, randomTitles),
			Venue:            pick(r, randomVenues),
			PerformanceDates: pick(r, randomDates),
			Pricing:          pick(r, randomPrices),
			Source:           fmt.Sprintf("source-%d", r.Intn(3)),
		}
		if r.Intn(2) == 0 {
			s.Description = fmt.Sprintf("Description %d", r.Intn(4))
		}
		if s.Valid() {
			return s
		}
	}
}

// RandomShows returns n random valid shows.
func RandomShows(r *rand.Rand, n int) []show.Show {
	shows := make([]show.Show, n)
	for i := range shows {
		shows[i] = RandomShow(r)
	}
	return shows
}

// MustNormalize normalizes a raw record, panicking if it is malformed.
func MustNormalize(raw show.RawRecord) show.Show {
	s, err := show.Normalize(raw)
	if err != nil {
		panic(err)
	}
	return s
}
