package venues

import (
	"strings"
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

func parseMarylebone(page scraper.Page) []show.RawRecord {
	return cards(page.Document.Selection, "div.production-item", func(item *goquery.Selection) show.RawRecord {
		title := textutil.FirstNonEmpty(
			htmlutil.FirstText(item, ".production-info .show-title"),
			htmlutil.FirstText(item, "h1, h2, h3, h4"),
		)

		// start and end date sit in two sibling divs
		var dates []string
		item.Find(".production-info .flex-horizontal .date.blue").Each(func(i int, d *goquery.Selection) {
			if i > 1 {
				return
			}
			if text := htmlutil.Text(d); text != "" {
				dates = append(dates, text)
			}
		})

		return show.RawRecord{
			Title:            title,
			Venue:            "Marylebone Theatre",
			PerformanceDates: strings.Join(dates, " - "),
			SaleDates:        htmlutil.FirstText(item, saleSelector),
			Pricing:          htmlutil.FirstText(item, `[class*="price"], [class*="ticket"]`),
			Description:      blurb(htmlutil.FirstText(item, ".production-info .creatives")),
			BookingLink:      link(page, item.Find("a.production-image")),
		}
	})
}
