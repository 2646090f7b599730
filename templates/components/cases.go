package components

import (
	"context"
	"io"

	"claim_flow_app_go/models"

	"github.com/a-h/templ"
)

// CaseTable renders a list of cases linking to their detail pages
func CaseTable(cases []models.Case) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		if len(cases) == 0 {
			return hw.Raw(`<p class="empty">Kayıtlı dosya yok.</p>`).Err()
		}
		hw.Raw(`<table class="table"><thead><tr><th>Dosya No</th><th>Müşteri</th><th>Plaka</th><th>Kategori</th><th>Bayi</th><th>Durum</th><th>Tarih</th></tr></thead><tbody>`)
		for i := range cases {
			c := &cases[i]
			dealer := ""
			if c.Dealer != nil {
				dealer = c.Dealer.Name
			}
			hw.Printf(`<tr><td><a href="/cases/%s">`, c.ID).Text(c.CaseNumber).Raw(`</a></td>`)
			hw.Raw(`<td>`).Text(c.CustomerName).Raw(`</td>`)
			hw.Raw(`<td>`).Text(c.PlateNumber).Raw(`</td>`)
			hw.Raw(`<td>`).Text(c.CategoryLabel()).Raw(`</td>`)
			hw.Raw(`<td>`).Text(dealer).Raw(`</td><td>`)
			hw.Component(ctx, StatusBadge(string(c.Status), c.StatusLabel()))
			hw.Raw(`</td><td>`).Text(FormatDate(&c.CreatedAt)).Raw(`</td></tr>`)
		}
		hw.Raw(`</tbody></table>`)
		return hw.Err()
	})
}

// NotificationList renders unread notifications with mark-as-read buttons
func NotificationList(notifications []models.Notification) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		if len(notifications) == 0 {
			return hw.Raw(`<p class="empty">Yeni bildirim yok.</p>`).Err()
		}
		hw.Raw(`<ul class="notifications">`)
		for _, n := range notifications {
			hw.Printf(`<li id="notification-%s">`, n.ID)
			if n.LinkURL != "" {
				hw.Printf(`<a href="%s">`, n.LinkURL).Text(n.Title).Raw(`</a>`)
			} else {
				hw.Raw(`<strong>`).Text(n.Title).Raw(`</strong>`)
			}
			hw.Raw(`<p>`).Text(n.Message).Raw(`</p><small>`).Text(FormatRelativeTime(n.CreatedAt)).Raw(`</small>`)
			hw.Printf(`<button hx-post="/notifications/%s/read" hx-target="#notification-%s" hx-swap="outerHTML">Okundu</button>`,
				n.ID, n.ID)
			hw.Raw(`</li>`)
		}
		hw.Raw(`</ul><button hx-post="/notifications/read-all" hx-target="previous ul" hx-swap="outerHTML">Tümünü okundu işaretle</button>`)
		return hw.Err()
	})
}
