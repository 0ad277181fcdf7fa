package venues

import (
	"theaterwatch/lib/htmlutil"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

func parseHampstead(page scraper.Page) []show.RawRecord {
	list := page.Document.Find("section.m-prodlist div.prodlists")
	return cards(list, "div.prodlist__item", func(item *goquery.Selection) show.RawRecord {
		title := item.Find("h3.prodlist__title a").First()

		venue := "Hampstead Theatre"
		billing := htmlutil.FirstText(item, `p[class*="prodlist__billing"]`)
		if textutil.MatchName(billing, []string{"downstairs"}) {
			venue = "Hampstead Downstairs"
		}

		var description string
		item.Find("div.typ p").
			Not(".prodlist__billing, .prodlist__credits").
			EachWithBreak(func(_ int, p *goquery.Selection) bool {
				description = htmlutil.Text(p)
				return description == ""
			})

		return show.RawRecord{
			Title:            htmlutil.Text(title),
			Venue:            venue,
			PerformanceDates: htmlutil.FirstText(item, `div[class*="prodlist__date"]`),
			SaleDates:        htmlutil.FirstText(item, saleSelector),
			Description:      description,
			BookingLink:      link(page, title),
		}
	})
}
