package pages

import (
	"context"
	"io"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/templates/components"

	"github.com/a-h/templ"
)

// DashboardStats holds the data for the dashboard
type DashboardStats struct {
	StatusCounts  map[casefile.Status]int64
	TotalCases    int64
	RecentCases   []models.Case
	Notifications []models.Notification
	UnreadCount   int64
}

// Dashboard renders case counts per stage, the latest cases and unread notifications
func Dashboard(stats DashboardStats) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(w)

		hw.Printf(`<div class="cards"><div class="card total"><span>Toplam Dosya</span><strong>%d</strong></div>`, stats.TotalCases)
		for _, s := range casefile.Statuses() {
			hw.Printf(`<a class="card" href="/cases?status=%s"><span>`, string(s))
			hw.Text(s.Label())
			hw.Printf(`</span><strong>%d</strong></a>`, stats.StatusCounts[s])
		}
		if n := stats.StatusCounts[casefile.StatusUnderReview]; n > 0 {
			hw.Raw(`<div class="card"><span>`).Text(casefile.StatusUnderReview.Label()).Printf(`</span><strong>%d</strong></div>`, n)
		}
		hw.Raw(`</div>`)

		hw.Raw(`<h2>Son Dosyalar</h2>`)
		hw.Component(ctx, components.CaseTable(stats.RecentCases))

		if len(stats.Notifications) > 0 {
			hw.Printf(`<h2>Bildirimler <span class="badge">%d</span></h2>`, stats.UnreadCount)
			hw.Component(ctx, components.NotificationList(stats.Notifications))
		}
		return hw.Err()
	})
}
