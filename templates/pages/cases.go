package pages

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/templates/components"

	"github.com/a-h/templ"
)

// CaseListData is the view model of the case list page
type CaseListData struct {
	Cases     []models.Case
	Total     int64
	Page      int
	PageSize  int
	Category  string
	Status    string
	Search    string
	CanCreate bool
	CanExport bool
}

func (d CaseListData) query(page int) string {
	v := url.Values{}
	if d.Category != "" {
		v.Set("category", d.Category)
	}
	if d.Status != "" {
		v.Set("status", d.Status)
	}
	if d.Search != "" {
		v.Set("q", d.Search)
	}
	if page > 0 {
		v.Set("page", fmt.Sprint(page))
	}
	return v.Encode()
}

// CaseList renders the filter bar, the case table and pagination
func CaseList(d CaseListData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(w)

		hw.Raw(`<form class="filters" method="get" action="/cases"><select name="category"><option value="">Tüm kategoriler</option>`)
		for _, ft := range casefile.FileTypes() {
			var selected components.Safe
			if string(ft.Category) == d.Category {
				selected = " selected"
			}
			hw.Printf(`<option value="%s"%s>`, string(ft.Category), selected).Text(ft.Label).Raw(`</option>`)
		}
		hw.Raw(`</select><select name="status"><option value="">Tüm durumlar</option>`)
		for _, s := range casefile.Statuses() {
			var selected components.Safe
			if string(s) == d.Status {
				selected = " selected"
			}
			hw.Printf(`<option value="%s"%s>`, string(s), selected).Text(s.Label()).Raw(`</option>`)
		}
		hw.Printf(`</select><input type="search" name="q" value="%s" placeholder="Dosya no, müşteri, plaka">`, d.Search)
		hw.Raw(`<button type="submit">Filtrele</button></form>`)

		hw.Raw(`<div class="actions">`)
		if d.CanExport {
			hw.Printf(`<a class="button" href="/api/exports/cases.xlsx?%s">Excel</a>`, d.query(0))
			hw.Printf(`<a class="button" href="/api/exports/documents.zip?%s">Tüm Evraklar (ZIP)</a>`, d.query(0))
		}
		hw.Raw(`</div>`)

		hw.Component(ctx, components.CaseTable(d.Cases))

		if d.PageSize > 0 && d.Total > int64(d.PageSize) {
			pages := int((d.Total + int64(d.PageSize) - 1) / int64(d.PageSize))
			hw.Raw(`<nav class="pagination">`)
			if d.Page > 1 {
				hw.Printf(`<a href="/cases?%s">Önceki</a>`, d.query(d.Page-1))
			}
			hw.Printf(`<span>%d / %d</span>`, d.Page, pages)
			if d.Page < pages {
				hw.Printf(`<a href="/cases?%s">Sonraki</a>`, d.query(d.Page+1))
			}
			hw.Raw(`</nav>`)
		}
		return hw.Err()
	})
}
