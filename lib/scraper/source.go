package scraper

import (
	"bytes"
	"fmt"
	"net/url"
	"theaterwatch/lib/show"
	"theaterwatch/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// Kind decides how a source page is fetched.
type Kind string

const (
	// KindStatic pages are plain HTML fetched over HTTP.
	KindStatic Kind = "static"
	// KindDynamic pages only render their listings after scripts run.
	KindDynamic Kind = "dynamic"
)

func ParseKind(value string) (Kind, error) {
	switch Kind(textutil.NormalizeName(value)) {
	case KindStatic, "":
		return KindStatic, nil
	case KindDynamic:
		return KindDynamic, nil
	}
	return "", fmt.Errorf("unknown source kind %q (expected static or dynamic)", value)
}

// Source is one monitored listing page.
type Source struct {
	// ID is stable and short, ex. `donmar`.
	ID  string
	URL string
	// Venue is the fallback venue for records that do not name one.
	Venue string
	Kind  Kind
}

func (s Source) String() string {
	return fmt.Sprintf("%s (%s)", s.ID, s.URL)
}

// Page is a fetched and parsed listing page.
type Page struct {
	URL      *url.URL
	Document *goquery.Document
}

func NewPage(rawUrl string, body []byte) (Page, error) {
	u, err := url.Parse(rawUrl)
	if err != nil {
		return Page{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, err
	}
	return Page{URL: u, Document: doc}, nil
}

// Parser extracts raw records from one venue's listing page. Parsers never
// fetch and never fail; a page they do not recognize yields no records.
type Parser func(page Page) []show.RawRecord
