package venues

import (
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"

	"github.com/PuerkitoBio/goquery"
)

// the Bridge lists its current productions in the header navigation overlay
// rather than on the page body.
func parseBridge(page scraper.Page) []show.RawRecord {
	overlay := page.Document.Find("nav#global-header-overlay-block")
	return cards(overlay, "div.global-header__nav-item", func(item *goquery.Selection) show.RawRecord {
		a := item.Find("a.global-header__nav-link").First()
		if a.Length() == 0 {
			return show.RawRecord{}
		}
		return show.RawRecord{
			Title:            htmlutil.FirstText(a, ".global-header__nav-heading"),
			Venue:            "The Bridge Theatre",
			PerformanceDates: htmlutil.FirstText(a, "span.global-header__nav-subheading"),
			SaleDates:        htmlutil.FirstText(item, saleSelector),
			BookingLink:      link(page, a),
		}
	})
}
