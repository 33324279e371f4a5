// Package dashboard drives the filter, fetch and render flow of the sentiment
// dashboard against an abstract View.
package dashboard

import (
	"github.com/miradorstack/sentiment-dashboard/internal/models"
	"github.com/miradorstack/sentiment-dashboard/internal/render"
)

// View is the surface the controller writes to. Implementations are owned by a
// single request and need not be safe for concurrent use.
type View interface {
	ShowLoading(show bool)
	// ShowError replaces any banner currently shown.
	ShowError(message string)
	Inputs() models.Filter
	SetDateRange(start, end string)
	SetKeywordOptions(keywords []string)
	SetKeyword(keyword string)
	// ClearResults drops the previous rendering before a new analysis.
	ClearResults()
	Render(d render.Dashboard)
}

// Page is the server-side View backing the HTML template.
type Page struct {
	Keyword        string
	StartDate      string
	EndDate        string
	KeywordOptions []string
	Loading        bool
	Error          string
	Results        *render.Dashboard
}

func (p *Page) ShowLoading(show bool)     { p.Loading = show }
func (p *Page) ShowError(message string)  { p.Error = message }
func (p *Page) SetKeyword(keyword string) { p.Keyword = keyword }
func (p *Page) ClearResults()             { p.Results = nil }

func (p *Page) Inputs() models.Filter {
	return models.Filter{Keyword: p.Keyword, StartDate: p.StartDate, EndDate: p.EndDate}
}

func (p *Page) SetDateRange(start, end string) {
	p.StartDate = start
	p.EndDate = end
}

func (p *Page) SetKeywordOptions(keywords []string) {
	p.KeywordOptions = append([]string(nil), keywords...)
}

func (p *Page) Render(d render.Dashboard) {
	p.Results = &d
}
