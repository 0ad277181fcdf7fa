// Package venues knows the listing pages of the monitored London theaters
// and how to read each of them.
package venues

import (
	"slices"
	"strings"
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"

	"github.com/PuerkitoBio/goquery"
)

type venue struct {
	source scraper.Source
	parse  scraper.Parser
}

var builtin = []venue{
	{
		source: scraper.Source{
			ID:    "donmar",
			URL:   "https://www.donmarwarehouse.com/whats-on",
			Venue: "Donmar Warehouse",
			Kind:  scraper.KindStatic,
		},
		parse: parseDonmar,
	},
	{
		source: scraper.Source{
			ID:    "bridge",
			URL:   "https://bridgetheatre.co.uk/performances/",
			Venue: "The Bridge Theatre",
			Kind:  scraper.KindStatic,
		},
		parse: parseBridge,
	},
	{
		source: scraper.Source{
			ID:    "national",
			URL:   "https://www.nationaltheatre.org.uk/whats-on/",
			Venue: "National Theatre",
			Kind:  scraper.KindStatic,
		},
		parse: parseNational,
	},
	{
		source: scraper.Source{
			ID:    "hampstead",
			URL:   "https://www.hampsteadtheatre.com/whats-on/main-stage/",
			Venue: "Hampstead Theatre",
			Kind:  scraper.KindStatic,
		},
		parse: parseHampstead,
	},
	{
		source: scraper.Source{
			ID:    "marylebone",
			URL:   "https://www.marylebonetheatre.com/#Whats-On",
			Venue: "Marylebone Theatre",
			Kind:  scraper.KindStatic,
		},
		parse: parseMarylebone,
	},
	{
		source: scraper.Source{
			ID:    "soho_dean",
			URL:   "https://sohotheatre.com/dean-street/",
			Venue: "Soho Theatre Dean Street",
			Kind:  scraper.KindStatic,
		},
		parse: parseSohoDean,
	},
	{
		source: scraper.Source{
			ID:    "soho_walthamstow",
			URL:   "https://sohotheatre.com/walthamstow/",
			Venue: "Soho Theatre Walthamstow",
			Kind:  scraper.KindStatic,
		},
		parse: parseSohoWalthamstow,
	},
	{
		source: scraper.Source{
			ID:    "rsc",
			URL:   "https://www.rsc.org.uk/whats-on/in/london/?from=ql",
			Venue: "Royal Shakespeare Company",
			Kind:  scraper.KindDynamic,
		},
		parse: parseRSC,
	},
	{
		source: scraper.Source{
			ID:    "royal_court",
			URL:   "https://royalcourttheatre.com/whats-on/",
			Venue: "Royal Court Theatre",
			Kind:  scraper.KindStatic,
		},
		parse: parseRoyalCourt,
	},
	{
		source: scraper.Source{
			ID:    "drury_lane",
			URL:   "https://lwtheatres.co.uk/theatres/theatre-royal-drury-lane/whats-on/",
			Venue: "Theatre Royal Drury Lane",
			Kind:  scraper.KindStatic,
		},
		parse: parseDruryLane,
	},
}

// Defaults returns the built-in source list in a stable order.
func Defaults() []scraper.Source {
	out := make([]scraper.Source, len(builtin))
	for i, v := range builtin {
		out[i] = v.source
	}
	return out
}

// Parsers returns the parser of every built-in source keyed by source id.
func Parsers() map[string]scraper.Parser {
	out := make(map[string]scraper.Parser, len(builtin))
	for _, v := range builtin {
		out[v.source.ID] = v.parse
	}
	return out
}

// IDs lists the built-in source ids.
func IDs() []string {
	out := make([]string, len(builtin))
	for i, v := range builtin {
		out[i] = v.source.ID
	}
	return out
}

// Lookup returns the built-in source with the given id.
func Lookup(id string) (scraper.Source, bool) {
	idx := slices.IndexFunc(builtin, func(v venue) bool {
		return v.source.ID == id
	})
	if idx < 0 {
		return scraper.Source{}, false
	}
	return builtin[idx].source, true
}

// the text of a card must be at least this long to be taken as a blurb,
// shorter strings are usually labels like "Book now".
const minDescription = 10

const saleSelector = `[class*="onsale"], [class*="on-sale"], [class*="booking-period"]`

func link(page scraper.Page, sel *goquery.Selection) string {
	return htmlutil.ResolveHref(page.URL, htmlutil.Href(sel))
}

func blurb(text string) string {
	if len([]rune(text)) < minDescription {
		return ""
	}
	return text
}

// cards applies fn to every match of selector, dropping records without a
// title.
func cards(sel *goquery.Selection, selector string, fn func(card *goquery.Selection) show.RawRecord) []show.RawRecord {
	var out []show.RawRecord
	sel.Find(selector).Each(func(_ int, card *goquery.Selection) {
		record := fn(card)
		if strings.TrimSpace(record.Title) == "" {
			return
		}
		out = append(out, record)
	})
	return out
}
