// Package htmltable extracts id-addressed tables from a stats page as CSV
// records with exactly two header lines.
package htmltable

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxColspan bounds colspan attributes taken from untrusted markup.
const maxColspan = 64

// Parse builds a queryable document from a page body.
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// Extract returns the table with the given id as records: an over-header
// line, the column header line, then one record per body row. Tables that
// the site ships inside HTML comments are found too. The second result is
// false when no such table exists.
func Extract(doc *goquery.Document, id string) ([][]string, bool) {
	sel := find(doc.Selection, id)
	if sel.Length() == 0 {
		sel = findInComments(doc, id)
	}
	if sel.Length() == 0 {
		return nil, false
	}
	return records(sel), true
}

func find(sel *goquery.Selection, id string) *goquery.Selection {
	return sel.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("id", "") == id
	}).First()
}

func findInComments(doc *goquery.Document, id string) *goquery.Selection {
	needle := `id="` + id + `"`
	var found *goquery.Selection
	for _, root := range doc.Nodes {
		walk(root, func(n *html.Node) bool {
			if n.Type != html.CommentNode || !strings.Contains(n.Data, needle) {
				return true
			}
			inner, err := goquery.NewDocumentFromReader(strings.NewReader(n.Data))
			if err != nil {
				return true
			}
			if sel := find(inner.Selection, id); sel.Length() > 0 {
				found = sel
				return false
			}
			return true
		})
	}
	if found == nil {
		return doc.Selection.Slice(0, 0)
	}
	return found
}

// walk visits n depth-first until visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func records(tbl *goquery.Selection) [][]string {
	var head [][]string
	tbl.Find("thead tr").Each(func(_ int, tr *goquery.Selection) {
		head = append(head, row(tr))
	})

	body := tbl.Find("tbody tr, tfoot tr")
	if len(head) == 0 {
		first := tbl.Find("tr").First()
		if first.Length() > 0 {
			head = append(head, row(first))
			body = body.NotSelection(first)
		}
	}

	switch {
	case len(head) == 0:
		head = [][]string{{}, {}}
	case len(head) == 1:
		head = [][]string{make([]string, len(head[0])), head[0]}
	default:
		head = head[len(head)-2:]
	}

	out := make([][]string, 0, body.Length()+2)
	out = append(out, head...)
	body.Each(func(_ int, tr *goquery.Selection) {
		out = append(out, row(tr))
	})
	return out
}

// row flattens a tr into cells, repeating the text of spanned cells the way
// a column header applies to every column it covers.
func row(tr *goquery.Selection) []string {
	var cells []string
	tr.Children().Filter("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := strings.Join(strings.Fields(cell.Text()), " ")
		span, err := strconv.Atoi(cell.AttrOr("colspan", "1"))
		if err != nil || span < 1 {
			span = 1
		}
		span = min(span, maxColspan)
		for j := 0; j < span; j++ {
			cells = append(cells, text)
		}
	})
	return cells
}
