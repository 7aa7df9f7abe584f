// Package extractor turns an e-SAJ case page into movement records.
package extractor

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/reissbruno/monitoramento-processual-tjsp/models"
)

// Table describes one movement table on the case page: the anchor that
// locates its body and the selectors for each row and its three fields.
type Table struct {
	Name        string
	Anchor      cascadia.Selector
	Row         cascadia.Selector
	Date        cascadia.Selector
	Description cascadia.Selector
	Link        cascadia.Selector
}

// movementTable builds the descriptor for a tbody with the given id. Both
// portal tables share the same row layout.
func movementTable(tbodyID string) Table {
	return Table{
		Name:        tbodyID,
		Anchor:      cascadia.MustCompile("tbody#" + tbodyID),
		Row:         cascadia.MustCompile("tr.containerMovimentacao"),
		Date:        cascadia.MustCompile("td.dataMovimentacao"),
		Description: cascadia.MustCompile("td.descricaoMovimentacao"),
		Link:        cascadia.MustCompile("a.linkMovVincProc"),
	}
}

// DefaultTables lists the recent-movements table before the full history.
var DefaultTables = []Table{
	movementTable("tabelaUltimasMovimentacoes"),
	movementTable("tabelaTodasMovimentacoes"),
}

// Extractor reads movement tables from raw HTML. It is stateless and safe
// for concurrent use.
type Extractor struct {
	tables []Table
}

// New returns an Extractor over DefaultTables.
func New() *Extractor {
	return &Extractor{tables: DefaultTables}
}

// NewWithTables returns an Extractor over a custom, ordered table list.
func NewWithTables(tables []Table) *Extractor {
	return &Extractor{tables: tables}
}

// Extract parses rawHTML and returns every movement row found, table by
// table in descriptor order and row by row in document order. Missing
// tables contribute nothing; missing cells yield empty fields. Rows that
// appear in more than one table are returned once per table.
func (e *Extractor) Extract(rawHTML string) ([]models.Movement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}
	return e.FromDocument(doc), nil
}

// FromDocument extracts movements from an already parsed document.
func (e *Extractor) FromDocument(doc *goquery.Document) []models.Movement {
	movements := []models.Movement{}

	for _, t := range e.tables {
		tbody := doc.FindMatcher(t.Anchor).First()
		if tbody.Length() == 0 {
			continue
		}

		tbody.FindMatcher(t.Row).Each(func(_ int, row *goquery.Selection) {
			movements = append(movements, models.Movement{
				DateTime:    joinText(row.FindMatcher(t.Date).First(), ""),
				Description: joinText(row.FindMatcher(t.Description).First(), " "),
				Documents:   row.FindMatcher(t.Link).First().AttrOr("href", ""),
			})
		})
	}

	return movements
}

// joinText collects the trimmed, non-empty text nodes under sel and joins
// them with sep. An empty selection yields "".
func joinText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
