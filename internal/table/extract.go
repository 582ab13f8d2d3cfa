package table

import "fmt"

// minRows is the caption row plus the two footer rows
const minRows = 3

// Extract walks the body of a table and returns the last header list seen and one record
// per data row. The first row (caption) and the last two rows (footer) are not part of
// the body.
func Extract(src Source) ([]string, []Record) {
	if len(src.Rows) < minRows {
		return nil, nil
	}

	st := NewState()
	records := make([]Record, 0, len(src.Rows)-minRows)

	for _, row := range src.Rows[1 : len(src.Rows)-2] {
		if ClassifyRow(row) == BannerRow {
			st = st.Banner(row)
			continue
		}

		var rec Record
		rec, st = Assemble(row, st)
		records = append(records, rec)
	}

	return st.Headers, records
}

// Page is the classified content of one year page
type Page struct {
	Tables      map[Kind]Table `json:"tables"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

// Ordered returns the page's tables in Kinds order
func (p *Page) Ordered() []Table {
	tables := make([]Table, 0, len(p.Tables))
	for _, k := range Kinds {
		if t, ok := p.Tables[k]; ok {
			tables = append(tables, t)
		}
	}
	return tables
}

// ExtractPage classifies and extracts every table of a page with the default rules
func ExtractPage(sources []Source) *Page {
	return Classifier{}.ExtractPage(sources)
}

// ExtractPage classifies and extracts every table of a page. Tables too short to have a
// body are ignored and do not count toward positional classification. Unclassified tables
// are reported and skipped; when two tables share a kind the later one wins.
func (c Classifier) ExtractPage(sources []Source) *Page {
	page := &Page{Tables: make(map[Kind]Table)}

	ordinal := 0
	for _, src := range sources {
		if len(src.Rows) < minRows {
			page.Diagnostics = append(page.Diagnostics, Diagnostic{
				Ordinal: -1,
				Caption: src.Caption,
				Reason:  fmt.Sprintf("only %d rows", len(src.Rows)),
			})
			continue
		}

		kind := c.Classify(src.Caption, src.Subcaption, ordinal)
		if kind == Unclassified {
			page.Diagnostics = append(page.Diagnostics, Diagnostic{
				Ordinal: ordinal,
				Caption: src.Caption,
				Reason:  "unclassified",
			})
			ordinal++
			continue
		}

		if _, dup := page.Tables[kind]; dup {
			page.Diagnostics = append(page.Diagnostics, Diagnostic{
				Ordinal: ordinal,
				Caption: src.Caption,
				Reason:  fmt.Sprintf("replaces earlier %s table", kind),
			})
		}

		headers, records := Extract(src)
		page.Tables[kind] = Table{
			Kind:       kind,
			Caption:    src.Caption,
			Subcaption: src.Subcaption,
			Headers:    headers,
			Records:    records,
		}
		ordinal++
	}

	return page
}
