package venues

import (
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

func parseDonmar(page scraper.Page) []show.RawRecord {
	return cards(page.Document.Selection, "li.eventCard", func(card *goquery.Selection) show.RawRecord {
		title := htmlutil.FirstText(card, "h2, h3, .eventCard__title")
		if title == "" {
			title = htmlutil.FirstText(card, `[class*="title"]`)
		}
		if title == "" {
			title = htmlutil.FirstText(card, "h1, h2, h3, h4")
		}

		return show.RawRecord{
			Title:            title,
			Venue:            "Donmar Warehouse",
			PerformanceDates: htmlutil.FirstText(card, `.eventCard__mainDate, .eventCard__dates, [class*="date"]`),
			SaleDates:        htmlutil.FirstText(card, saleSelector),
			Pricing:          htmlutil.FirstText(card, `.eventCard__price, [class*="price"], [class*="ticket"]`),
			Description: blurb(textutil.FirstNonEmpty(
				htmlutil.FirstText(card, `.eventCard__description, .eventCard__snippet, [class*="description"], [class*="snippet"]`),
				htmlutil.FirstText(card, `p:not([class*="date"])`),
			)),
			BookingLink: link(page, card.Find("a")),
		}
	})
}
