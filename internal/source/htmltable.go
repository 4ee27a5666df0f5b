package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLTable is one parsed <table>: the first row becomes Headers, every
// following row a Rows entry. th and td cells are treated alike; cell text
// is whitespace-trimmed.
type HTMLTable struct {
	Headers []string
	Rows    [][]string
}

// ExtractTables parses the document in r and returns every <table> found,
// in document order.
func ExtractTables(r io.Reader) ([]HTMLTable, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var tables []HTMLTable
	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		var t HTMLTable
		tbl.Find("tr").Each(func(i int, tr *goquery.Selection) {
			var cells []string
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) == 0 {
				return
			}
			if t.Headers == nil {
				t.Headers = cells
			} else {
				t.Rows = append(t.Rows, cells)
			}
		})
		if t.Headers != nil {
			tables = append(tables, t)
		}
	})
	return tables, nil
}

// Column returns the index of the header cell matching name, or -1.
func (t HTMLTable) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// RowByLabel returns the first row whose leading cell matches label.
func (t HTMLTable) RowByLabel(label string) ([]string, bool) {
	for _, row := range t.Rows {
		if len(row) > 0 && row[0] == label {
			return row, true
		}
	}
	return nil, false
}

// CellAfterHeader parses the document in r and returns the text of the first
// cell following a <th> whose text matches header. This is the shape of the
// WIP rollup, where "WorkInProgress Subtotal" is a row header and the value
// sits in the adjacent cell.
func CellAfterHeader(r io.Reader, header string) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", false, fmt.Errorf("parse html: %w", err)
	}

	var value string
	var found bool
	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if strings.TrimSpace(th.Text()) != header {
			return true
		}
		next := th.NextFiltered("td")
		if next.Length() == 0 {
			return true
		}
		value = strings.TrimSpace(next.Text())
		found = true
		return false
	})
	return value, found, nil
}
