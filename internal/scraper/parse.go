package scraper

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/almanac-tables/internal/table"
)

// ErrContainerMissing is returned when a page lacks the #wrapper content container
var ErrContainerMissing = errors.New("page content container not found")

// ParsePage extracts every boxed table on a year page, in document order. Each source
// holds all of the table's body rows, caption and footer rows included.
func ParsePage(r io.Reader) ([]table.Source, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	wrapper := doc.Find("#wrapper").First()
	if wrapper.Length() == 0 {
		return nil, ErrContainerMissing
	}

	var sources []table.Source
	wrapper.Find("div.container div.ba-table").Each(func(_ int, div *goquery.Selection) {
		tbl := div.Find("table.boxed").First()
		if tbl.Length() == 0 {
			return
		}
		sources = append(sources, parseTable(tbl))
	})

	return sources, nil
}

func parseTable(tbl *goquery.Selection) table.Source {
	var src table.Source

	rows := tbl.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	if rows.Length() == 0 {
		return src
	}

	src.Caption, src.Subcaption = caption(rows.First())
	src.Rows = make([]table.Row, 0, rows.Length())
	rows.Each(func(_ int, tr *goquery.Selection) {
		src.Rows = append(src.Rows, parseRow(tr))
	})
	return src
}

// caption reads the title and subtitle from a caption row, falling back to the row's
// whole text when either heading is missing
func caption(tr *goquery.Selection) (string, string) {
	h2 := tr.Find("h2").First()
	p := tr.Find("p").First()
	if h2.Length() == 0 || p.Length() == 0 {
		return cleanText(tr.Text()), ""
	}
	return cleanText(h2.Text()), cleanText(p.Text())
}

func parseRow(tr *goquery.Selection) table.Row {
	cells := tr.ChildrenFiltered("td")
	row := make(table.Row, 0, cells.Length())
	cells.Each(func(_ int, td *goquery.Selection) {
		cell := table.Cell{
			Text:   cleanText(td.Text()),
			Styles: strings.Fields(td.AttrOr("class", "")),
		}
		if span, ok := td.Attr("rowspan"); ok {
			cell.Span = parseSpan(span)
		}
		row = append(row, cell)
	})
	return row
}

// parseSpan accepts only plain digit strings; anything else declares no span
func parseSpan(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// cleanText normalizes a cell's text to NFC and collapses whitespace. strings.Fields
// counts non-breaking spaces as whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
