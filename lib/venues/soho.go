package venues

import (
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// both Soho Theatre sites share a card layout.
func parseSohoCard(page scraper.Page, card *goquery.Selection, venue string) show.RawRecord {
	return show.RawRecord{
		Title:            htmlutil.FirstText(card, ".card-title"),
		Venue:            venue,
		PerformanceDates: htmlutil.FirstText(card, ".date"),
		SaleDates:        htmlutil.FirstText(card, saleSelector),
		Pricing:          htmlutil.FirstText(card, ".price"),
		Description:      htmlutil.FirstText(card, ".subtitle"),
		BookingLink:      link(page, card.Find("a.card-link")),
	}
}

func parseSohoDean(page scraper.Page) []show.RawRecord {
	return cards(page.Document.Selection, "div.card.card--event", func(card *goquery.Selection) show.RawRecord {
		return parseSohoCard(page, card, "Soho Theatre Dean Street")
	})
}

func parseSohoWalthamstow(page scraper.Page) []show.RawRecord {
	return cards(page.Document.Selection, "div.card.card--event", func(card *goquery.Selection) show.RawRecord {
		venue := "Soho Theatre Walthamstow"
		if location := htmlutil.FirstText(card, ".location"); textutil.MatchName(location, []string{"walthamstow"}) {
			venue = location
		}
		return parseSohoCard(page, card, venue)
	})
}
