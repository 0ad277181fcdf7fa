package venues

import (
	"testing"
	"theaterwatch/lib/scraper"
	"theaterwatch/lib/show"

	"github.com/stretchr/testify/require"
)

func parse(t testing.TB, id, html string) []show.RawRecord {
	t.Helper()

	src, ok := Lookup(id)
	require.True(t, ok, "unknown source %s", id)
	page, err := scraper.NewPage(src.URL, []byte(html))
	require.NoError(t, err)
	return Parsers()[id](page)
}

func TestParsers(t *testing.T) {
	testCases := []struct {
		id     string
		html   string
		expect []show.RawRecord
	}{
		{
			id: "donmar",
			html: `<ul>
<li class="eventCard">
	<a href="/productions/hamlet"><h3 class="eventCard__title">Hamlet</h3></a>
	<p class="eventCard__mainDate">1 - 20 Mar 2025</p>
	<span class="eventCard__onsale">Members on sale 3 Feb</span>
	<p class="eventCard__description">A new production of the tragedy.</p>
	<span class="eventCard__price">£10 - £50</span>
</li>
<li class="eventCard"><p>Book now</p></li>
</ul>`,
			expect: []show.RawRecord{{
				Title:            "Hamlet",
				Venue:            "Donmar Warehouse",
				PerformanceDates: "1 - 20 Mar 2025",
				SaleDates:        "Members on sale 3 Feb",
				Pricing:          "£10 - £50",
				Description:      "A new production of the tragedy.",
				BookingLink:      "https://www.donmarwarehouse.com/productions/hamlet",
			}},
		},
		{
			id: "bridge",
			html: `<nav id="global-header-overlay-block">
	<div class="global-header__nav-item">
		<a class="global-header__nav-link" href="/performances/the-importance/">
			<span class="global-header__nav-heading">The Importance of Being Earnest</span>
			<span class="global-header__nav-subheading date">3 Feb – 29 Mar 2025</span>
		</a>
	</div>
	<div class="global-header__nav-item"><span>Gift vouchers</span></div>
</nav>`,
			expect: []show.RawRecord{{
				Title:            "The Importance of Being Earnest",
				Venue:            "The Bridge Theatre",
				PerformanceDates: "3 Feb – 29 Mar 2025",
				BookingLink:      "https://bridgetheatre.co.uk/performances/the-importance/",
			}},
		},
		{
			id: "national",
			html: `<section>
	<h2>On tour</h2>
	<div class="c-event-card"><h3 class="c-event-card__title">Touring</h3></div>
</section>
<section>
	<h2>At the South Bank</h2>
	<div class="c-event-card">
		<a class="c-event-card__cover-link" href="/productions/nye/"></a>
		<h3 class="c-event-card__title">Nye</h3>
		<div class="c-event-card__daterange">24 Feb – 11 May 2025</div>
		<div class="c-event-card__location">Olivier<br>theatre</div>
		<div class="c-event-card__description">Michael Sheen plays Nye Bevan.</div>
	</div>
	<div class="c-event-card">
		<h3 class="c-event-card__title">Platform talk</h3>
	</div>
</section>`,
			expect: []show.RawRecord{
				{
					Title:            "Nye",
					Venue:            "Olivier theatre",
					PerformanceDates: "24 Feb – 11 May 2025",
					Description:      "Michael Sheen plays Nye Bevan.",
					BookingLink:      "https://www.nationaltheatre.org.uk/productions/nye/",
				},
				{
					Title: "Platform talk",
					Venue: "National Theatre",
				},
			},
		},
		{
			id: "hampstead",
			html: `<section class="m-prodlist"><div class="prodlists">
	<div class="prodlist__item">
		<h3 class="prodlist__title"><a href="/whats-on/2025/the-fear-of-13/">The Fear of 13</a></h3>
		<div class="prodlist__date prodlist__date--main">10 Jan - 15 Feb 2025</div>
		<div class="typ">
			<p class="prodlist__billing">Downstairs</p>
			<p class="prodlist__credits">By Lindsey Ferrentino</p>
			<p></p>
			<p>A true story of survival.</p>
		</div>
	</div>
	<div class="prodlist__item"><div class="prodlist__date">Coming soon</div></div>
</div></section>`,
			expect: []show.RawRecord{{
				Title:            "The Fear of 13",
				Venue:            "Hampstead Downstairs",
				PerformanceDates: "10 Jan - 15 Feb 2025",
				Description:      "A true story of survival.",
				BookingLink:      "https://www.hampsteadtheatre.com/whats-on/2025/the-fear-of-13/",
			}},
		},
		{
			id: "marylebone",
			html: `<div class="production-item">
	<a class="production-image" href="productions/the-lover"><img src="lover.jpg"></a>
	<div class="production-info">
		<h2 class="show-title">The Lover</h2>
		<div class="flex-horizontal"><div class="date blue">5 Mar 2025</div><div class="date blue">12 Apr 2025</div></div>
		<div class="creatives">Written by Harold Pinter</div>
		<span class="ticket-price">From £20</span>
	</div>
</div>`,
			expect: []show.RawRecord{{
				Title:            "The Lover",
				Venue:            "Marylebone Theatre",
				PerformanceDates: "5 Mar 2025 - 12 Apr 2025",
				Pricing:          "From £20",
				Description:      "Written by Harold Pinter",
				BookingLink:      "https://www.marylebonetheatre.com/productions/the-lover",
			}},
		},
		{
			id: "soho_dean",
			html: `<div class="card card--event">
	<a class="card-link" href="/events/rosie-jones/"></a>
	<h3 class="card-title">Rosie Jones</h3>
	<p class="subtitle">Triple Threat</p>
	<span class="date">3 - 5 Apr</span>
	<span class="location">Upstairs</span>
	<span class="price">£15 - £25</span>
</div>`,
			expect: []show.RawRecord{{
				Title:            "Rosie Jones",
				Venue:            "Soho Theatre Dean Street",
				PerformanceDates: "3 - 5 Apr",
				Pricing:          "£15 - £25",
				Description:      "Triple Threat",
				BookingLink:      "https://sohotheatre.com/events/rosie-jones/",
			}},
		},
		{
			id: "soho_walthamstow",
			html: `<div class="card card--event">
	<h3 class="card-title">Late Night Comedy</h3>
	<span class="location">Soho Theatre Walthamstow Main House</span>
</div>
<div class="card card--event">
	<h3 class="card-title">Family Panto</h3>
	<span class="location">Dean Street</span>
</div>`,
			expect: []show.RawRecord{
				{Title: "Late Night Comedy", Venue: "Soho Theatre Walthamstow Main House"},
				{Title: "Family Panto", Venue: "Soho Theatre Walthamstow"},
			},
		},
		{
			id: "rsc",
			html: `<article class="whatson"><div id="grid-view">
	<div class="wo-grid-item">
		<div id="PlayTitleCopy"><h3 class="gi-title">Much Ado About Nothing</h3></div>
		<div class="gi-info"><div class="place-time">
			<div class="loc">Garrick Theatre</div>
			<div class="dates">From 10 Jun 2025</div>
		</div></div>
		<div class="gi-intro"><div class="gi-intro-copy">A summer comedy.</div></div>
		<div class="gi-perf-list">
			<a class="button-link info" href="/much-ado/info">More info</a>
			<a class="button-link" href="/much-ado/book">Book tickets</a>
		</div>
	</div>
</div></article>`,
			expect: []show.RawRecord{{
				Title:            "Much Ado About Nothing",
				Venue:            "Garrick Theatre",
				PerformanceDates: "From 10 Jun 2025",
				Description:      "A summer comedy.",
				BookingLink:      "https://www.rsc.org.uk/much-ado/book",
			}},
		},
		{
			id: "royal_court",
			html: `<a href="/whats-on/cold-water/"><div class="event-block">
	<h3 class="event-title">Cold Water</h3>
	<span class="event-location">Jerwood Theatre Upstairs</span>
	<span class="event-time">2 - 20 Apr 2025</span>
	<p class="event-subheading">By Moses Raine</p>
	<span class="btn sold-out">Sold out</span>
</div></a>`,
			expect: []show.RawRecord{{
				Title:            "Cold Water",
				Venue:            "Jerwood Theatre Upstairs",
				PerformanceDates: "2 - 20 Apr 2025",
				Pricing:          "Sold Out",
				Description:      "By Moses Raine",
				BookingLink:      "https://royalcourttheatre.com/whats-on/cold-water/",
			}},
		},
		{
			id: "drury_lane",
			html: `<a class="c-event-card" href="/whats-on/frozen/"><div class="c-event-card__content">
	<h3 class="c-event-card__title">Frozen</h3>
	<p class="c-event-card__datetime">Until 1 Jun 2025</p>
</div></a>`,
			expect: []show.RawRecord{{
				Title:            "Frozen",
				Venue:            "Theatre Royal Drury Lane",
				PerformanceDates: "Until 1 Jun 2025",
				BookingLink:      "https://lwtheatres.co.uk/whats-on/frozen/",
			}},
		},
	}

	for _, test := range testCases {
		t.Run(test.id, func(t *testing.T) {
			require.Equal(t, test.expect, parse(t, test.id, test.html))
		})
	}
}

func TestParsersUnknownPage(t *testing.T) {
	for _, id := range IDs() {
		records := parse(t, id, `<html><body><h1>Maintenance</h1><p>Back soon.</p></body></html>`)
		require.Empty(t, records, id)
	}
}

func TestDefaults(t *testing.T) {
	sources := Defaults()
	parsers := Parsers()
	require.Len(t, sources, 10)
	require.Len(t, parsers, len(sources))

	seen := map[string]bool{}
	for _, src := range sources {
		require.False(t, seen[src.ID], "duplicate source %s", src.ID)
		seen[src.ID] = true
		require.Contains(t, parsers, src.ID)
		require.NotEmpty(t, src.Venue)

		expectKind := scraper.KindStatic
		if src.ID == "rsc" {
			expectKind = scraper.KindDynamic
		}
		require.Equal(t, expectKind, src.Kind, src.ID)
	}

	_, ok := Lookup("globe")
	require.False(t, ok)
}
