package venues

import (
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// only the "At the South Bank" section is read, the rest of the page is
// touring and streamed productions.
func parseNational(page scraper.Page) []show.RawRecord {
	header := page.Document.Find("h2").FilterFunction(func(_ int, h *goquery.Selection) bool {
		return textutil.MatchName(htmlutil.Text(h), []string{"atthesouthbank"})
	}).First()
	section := header.Closest("section")
	if section.Length() == 0 {
		return nil
	}

	return cards(section, "div.c-event-card", func(card *goquery.Selection) show.RawRecord {
		return show.RawRecord{
			Title: htmlutil.FirstText(card, "h3.c-event-card__title"),
			Venue: textutil.FirstNonEmpty(
				htmlutil.FirstText(card, "div.c-event-card__location"),
				"National Theatre",
			),
			PerformanceDates: htmlutil.FirstText(card, "div.c-event-card__daterange"),
			SaleDates:        htmlutil.FirstText(card, saleSelector),
			Description:      htmlutil.FirstText(card, "div.c-event-card__description"),
			BookingLink:      link(page, card.Find("a.c-event-card__cover-link")),
		}
	})
}

// Drury Lane's whats-on page wraps each card's content in its link.
func parseDruryLane(page scraper.Page) []show.RawRecord {
	return cards(page.Document.Selection, ".c-event-card__content", func(content *goquery.Selection) show.RawRecord {
		return show.RawRecord{
			Title: htmlutil.FirstText(content, ".c-event-card__title"),
			Venue: textutil.FirstNonEmpty(
				htmlutil.FirstText(content, ".c-event-card__venue"),
				"Theatre Royal Drury Lane",
			),
			PerformanceDates: htmlutil.FirstText(content, ".c-event-card__datetime"),
			SaleDates:        htmlutil.FirstText(content, saleSelector),
			BookingLink:      link(page, content.Closest("a")),
		}
	})
}
