package venues

import (
	"strings"
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"

	"github.com/PuerkitoBio/goquery"
)

// the RSC grid is rendered client side, this parser expects the DOM after
// scripts have run.
func parseRSC(page scraper.Page) []show.RawRecord {
	grid := page.Document.Find("article.whatson div#grid-view")
	return cards(grid, "div.wo-grid-item", func(item *goquery.Selection) show.RawRecord {
		var booking *goquery.Selection
		item.Find(`div.gi-perf-list a[class*="button-link"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.HasPrefix(strings.ToUpper(htmlutil.Text(a)), "BOOK") {
				booking = a
				return false
			}
			return true
		})
		bookingLink := ""
		if booking != nil {
			bookingLink = link(page, booking)
		}

		placeTime := item.Find("div.gi-info div.place-time")
		return show.RawRecord{
			Title:            htmlutil.FirstText(item, `#PlayTitleCopy h3[class*="title"]`),
			Venue:            htmlutil.FirstText(placeTime, "div.loc"),
			PerformanceDates: htmlutil.FirstText(placeTime, "div.dates"),
			SaleDates:        htmlutil.FirstText(item, saleSelector),
			Description:      htmlutil.FirstText(item, "div.gi-intro div.gi-intro-copy"),
			BookingLink:      bookingLink,
		}
	})
}
