package showdiff

import (
	"strings"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// trailing phrases that mark a one-off performance of an existing listing
var noiseSuffixes = []string{
	"press night",
	"press performance",
}

// connectors left behind once a venue suffix is stripped from a title,
// longest first
var venueConnectors = []string{
	"at the",
	"at",
}

// sep stands for a punctuation boundary inside a folded title until the
// noise and venue suffixes have been stripped.
const sep = "¦"

func isQuote(r rune) bool {
	switch r {
	case '\'', '"', '`', '‘', '’', '‚', '‛', '“', '”', '„', '«', '»', '′', '″':
		return true
	}
	return false
}

func isHyphen(r rune) bool {
	return r == '-' || r == '‐' || r == '‑'
}

// foldKeyPart lower-cases text and reduces punctuation to boundary so that
// "HAMLET — matinee" and "Hamlet (matinee)" fold to the same words. A hyphen
// between two letters is dropped, "Re-Member" folds like "ReMember".
func foldKeyPart(text, boundary string) string {
	runes := []rune(strings.ToLower(norm.NFKC.String(text)))

	var b strings.Builder
	for i, r := range runes {
		switch {
		case isQuote(r):
			continue
		case isHyphen(r) && i > 0 && i < len(runes)-1 &&
			unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]):
			continue
		case r == '&':
			b.WriteString(" and ")
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			b.WriteString(boundary)
		default:
			b.WriteRune(r)
		}
	}
	return textutil.Collapse(b.String())
}

// trimBoundaries removes leading and trailing sep markers.
func trimBoundaries(text string) string {
	for {
		trimmed := strings.TrimSpace(strings.TrimSuffix(text, sep))
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, sep))
		if trimmed == text {
			return text
		}
		text = trimmed
	}
}

func trimWordSuffix(text, suffix string) (string, bool) {
	if text == suffix || !strings.HasSuffix(text, " "+suffix) {
		return text, false
	}
	return strings.TrimSpace(strings.TrimSuffix(text, suffix)), true
}

func stripNoise(title string) string {
	for {
		stripped := false
		for _, suffix := range noiseSuffixes {
			rest, ok := trimWordSuffix(title, suffix)
			if !ok {
				continue
			}
			if rest = trimBoundaries(rest); rest != "" {
				title = rest
				stripped = true
			}
		}
		if !stripped {
			return title
		}
	}
}

// stripVenue removes a trailing venue name that is set off from the rest of
// the title by punctuation or an "at"/"at the" connector. "London Bridge" at
// the Bridge keeps its full title.
func stripVenue(title, venue string) string {
	if venue == "" {
		return title
	}
	rest, ok := trimWordSuffix(title, venue)
	if !ok {
		return title
	}
	if strings.HasSuffix(rest, sep) {
		if trimmed := trimBoundaries(rest); trimmed != "" {
			return trimmed
		}
		return title
	}
	for _, connector := range venueConnectors {
		trimmed, ok := trimWordSuffix(rest, connector)
		if !ok {
			continue
		}
		if trimmed = trimBoundaries(trimmed); trimmed != "" {
			return trimmed
		}
	}
	return title
}

func keyParts(s show.Show) (venue, title string) {
	venue = foldKeyPart(s.Venue, " ")
	title = trimBoundaries(foldKeyPart(s.Title, " "+sep+" "))
	title = stripNoise(title)
	title = stripVenue(title, venue)
	title = textutil.Collapse(strings.ReplaceAll(title, sep, " "))
	return venue, title
}

// MatchKey derives the identity used to pair a show across two snapshots:
// the folded venue and the folded title with noise suffixes and a repeated
// venue name removed. Every other field is expected to change over time and
// is ignored. An empty key means the show cannot be matched at all.
func MatchKey(s show.Show) string {
	venue, title := keyParts(s)
	if venue == "" && title == "" {
		return ""
	}
	return venue + "|" + title
}
