package view

import (
	"strconv"
	"strings"

	"github.com/apedo/eglise-console/internal/domain"
)

// PageSize is the number of ledger lines shown initially and added by ShowMore.
const PageSize = 5

// LedgerList is one side (income or expense) of the finance page: a type
// filter, a search term and a pagination counter. Each side keeps its own.
type LedgerList struct {
	kind    string
	search  string
	visible int
}

// NewLedgerList creates a list for transactions of the given type.
func NewLedgerList(kind string) *LedgerList {
	return &LedgerList{kind: kind, visible: PageSize}
}

// SetSearch changes the search term. Any change resets the page to PageSize.
func (l *LedgerList) SetSearch(term string) {
	if term != l.search {
		l.visible = PageSize
	}
	l.search = term
}

// ShowMore reveals PageSize more lines.
func (l *LedgerList) ShowMore() {
	l.visible += PageSize
}

// SetVisible restores a page counter, e.g. from a query string. Values below
// PageSize are raised to it.
func (l *LedgerList) SetVisible(n int) {
	if n < PageSize {
		n = PageSize
	}
	l.visible = n
}

// Visible is the current page counter.
func (l *LedgerList) Visible() int {
	return l.visible
}

// Page applies the filter and pagination to txs.
func (l *LedgerList) Page(txs []domain.Transaction) domain.LedgerPage {
	matched := l.Filter(txs)

	shown := matched
	if len(shown) > l.visible {
		shown = shown[:l.visible]
	}
	return domain.LedgerPage{
		Items:   shown,
		Search:  l.search,
		Matched: len(matched),
		Visible: l.visible,
		HasMore: len(matched) > l.visible,
	}
}

// Filter returns every transaction of the list's type matching the search
// over category, description, date and amount.
func (l *LedgerList) Filter(txs []domain.Transaction) []domain.Transaction {
	term := strings.ToLower(l.search)

	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Type != l.kind {
			continue
		}
		if term == "" || matches(t, term) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t domain.Transaction, term string) bool {
	return strings.Contains(strings.ToLower(t.Category), term) ||
		strings.Contains(strings.ToLower(t.Description), term) ||
		strings.Contains(strings.ToLower(t.Date), term) ||
		strings.Contains(strconv.FormatFloat(t.Amount, 'f', -1, 64), term)
}
