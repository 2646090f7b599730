package pages

import (
	"context"
	"io"
	"time"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/templates/components"

	"github.com/a-h/templ"
)

const summaryStyle = `body{font-family:Arial,Helvetica,sans-serif;font-size:11pt;color:#222}
h1{font-size:16pt;margin:0 0 4pt}table{width:100%;border-collapse:collapse;margin-top:10pt}
th,td{border:1px solid #999;padding:4pt;text-align:left}th{background:#eee}
.ok{color:#0a6b2b}.missing{color:#b00020}small{color:#666}`

// CaseSummary is a standalone document rendered to PDF
func CaseSummary(c *models.Case, checklist []casefile.ChecklistItem, documents []components.DocumentDisplay, generatedAt time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(w)
		hw.Raw(`<!doctype html><html lang="tr"><head><meta charset="utf-8"><style>`).Raw(summaryStyle).Raw(`</style></head><body>`)
		hw.Raw(`<h1>Dosya Özeti `).Text(c.CaseNumber).Raw(`</h1>`)
		hw.Raw(`<small>Oluşturulma: `).Text(generatedAt.Format("02.01.2006 15:04")).Raw(`</small>`)

		hw.Raw(`<table><tbody>`)
		row := func(label, value string) {
			hw.Raw(`<tr><th>`).Text(label).Raw(`</th><td>`).Text(value).Raw(`</td></tr>`)
		}
		row("Kategori", c.CategoryLabel())
		row("Durum", c.StatusLabel())
		row("Müşteri", c.CustomerName)
		row("Telefon", c.CustomerPhone)
		row("Plaka", c.PlateNumber)
		if c.Dealer != nil {
			row("Bayi", c.Dealer.Name)
		}
		row("Açılış", components.FormatDate(&c.CreatedAt))
		row("Kapanış", components.FormatDate(c.ClosedAt))
		hw.Raw(`</tbody></table>`)

		hw.Raw(`<table><thead><tr><th>Gerekli Evrak</th><th>Adet</th><th>Durum</th></tr></thead><tbody>`)
		for _, item := range checklist {
			status, class := "Eksik", "missing"
			if item.Satisfied {
				status, class = "Tamam", "ok"
			}
			hw.Raw(`<tr><td>`).Text(item.Label).Printf(`</td><td>%d/%d</td><td class="%s">`, item.Uploaded, item.MinCount, class).Text(status).Raw(`</td></tr>`)
		}
		hw.Raw(`</tbody></table>`)

		hw.Raw(`<table><thead><tr><th>Evrak</th><th>Dosya</th><th>Tarih</th></tr></thead><tbody>`)
		for _, d := range documents {
			hw.Raw(`<tr><td>`).Text(casefile.KindLabel(d.Document.Kind)).Raw(`</td><td>`).Text(d.Name).Raw(`</td><td>`)
			hw.Text(components.FormatDate(&d.Document.CreatedAt)).Raw(`</td></tr>`)
		}
		hw.Raw(`</tbody></table></body></html>`)
		return hw.Err()
	})
}
