package venues

import (
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

func parseRoyalCourt(page scraper.Page) []show.RawRecord {
	return cards(page.Document.Selection, "div.event-block", func(card *goquery.Selection) show.RawRecord {
		anchor := card.Closest("a")
		if anchor.Length() == 0 {
			anchor = card.Find("a")
		}

		var pricing string
		if card.Find(".btn.sold-out").Length() > 0 {
			pricing = "Sold Out"
		}

		return show.RawRecord{
			Title: htmlutil.FirstText(card, ".event-title"),
			Venue: textutil.FirstNonEmpty(
				htmlutil.FirstText(card, ".event-location"),
				"Royal Court Theatre",
			),
			PerformanceDates: htmlutil.FirstText(card, ".event-time"),
			SaleDates:        htmlutil.FirstText(card, saleSelector),
			Pricing:          pricing,
			Description:      htmlutil.FirstText(card, ".event-subheading"),
			BookingLink:      link(page, anchor),
		}
	})
}
