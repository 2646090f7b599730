package pages

import (
	"context"
	"io"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"
	"claim_flow_app_go/services/permissions"
	"claim_flow_app_go/templates/components"

	"github.com/a-h/templ"
)

// CaseDetailData is the view model of one case page
type CaseDetailData struct {
	Case        *models.Case
	Checklist   []casefile.ChecklistItem
	Documents   []components.DocumentDisplay
	UploadKinds []casefile.RequiredDocument
	ResultKinds []casefile.ResultDocument
	Cases       permissions.Capabilities
	Exports     permissions.Capabilities
	CanUpload   bool
	CanSMS      bool
	NextStages  []casefile.Status
}

// CaseDetail renders case data, the checklist, documents and the actions the
// caller is allowed to take
func CaseDetail(d CaseDetailData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		c := d.Case
		id := c.ID
		hw := components.NewWriter(w)

		hw.Raw(`<div class="case-header"><h2>`).Text(c.CaseNumber).Raw(`</h2>`)
		hw.Component(ctx, components.StatusBadge(string(c.Status), c.StatusLabel()))
		hw.Raw(`</div><dl class="case-info">`)
		field := func(label, value string) {
			hw.Raw(`<dt>`).Text(label).Raw(`</dt><dd>`).Text(value).Raw(`</dd>`)
		}
		field("Kategori", c.CategoryLabel())
		field("Müşteri", c.CustomerName)
		field("Telefon", c.CustomerPhone)
		field("E-posta", c.CustomerEmail)
		field("Plaka", c.PlateNumber)
		if c.Dealer != nil {
			field("Bayi", c.Dealer.Name)
		}
		field("Açılış", components.FormatDate(&c.CreatedAt))
		field("Kapanış", components.FormatDate(c.ClosedAt))
		hw.Raw(`</dl>`)
		if c.Notes != "" {
			hw.Raw(`<p class="notes">`).Text(c.Notes).Raw(`</p>`)
		}

		hw.Raw(`<div class="actions">`)
		if d.Exports.Export {
			hw.Printf(`<a class="button" href="/api/cases/%s/export.zip">Evrakları İndir (ZIP)</a>`, id)
			hw.Printf(`<a class="button" href="/cases/%s/summary.pdf">Özet PDF</a>`, id)
		}
		if d.Cases.Edit && !c.IsClosed() && len(d.NextStages) > 0 {
			hw.Printf(`<form hx-post="/api/cases/%s/status" hx-target="#case-flash" hx-swap="innerHTML"><select name="status">`, id)
			for _, s := range d.NextStages {
				hw.Printf(`<option value="%s">`, string(s)).Text(s.Label()).Raw(`</option>`)
			}
			hw.Raw(`</select><button type="submit">Durumu Güncelle</button></form>`)
		}
		hw.Raw(`</div><div id="case-flash"></div>`)

		hw.Raw(`<h3>Gerekli Evraklar</h3>`)
		hw.Component(ctx, components.Checklist(d.Checklist))

		hw.Raw(`<h3>Evraklar</h3><table class="table"><thead><tr><th>Tür</th><th>Dosya</th><th>Boyut</th><th>Tarih</th><th></th></tr></thead>`)
		hw.Component(ctx, components.DocumentRows(d.Documents))
		hw.Raw(`</table>`)

		if d.CanUpload && !c.IsClosed() {
			hw.Printf(`<form class="upload" hx-post="/api/cases/%s/documents" hx-encoding="multipart/form-data" hx-target="#case-flash" hx-swap="innerHTML">`, id)
			hw.Raw(`<select name="kind" required>`)
			for _, k := range d.UploadKinds {
				hw.Printf(`<option value="%s">`, string(k.Kind)).Text(k.Label).Raw(`</option>`)
			}
			for _, r := range d.ResultKinds {
				hw.Printf(`<option value="%s">`, string(r.Kind)).Text(r.Label + " (sonuç)").Raw(`</option>`)
			}
			hw.Raw(`</select><input type="file" name="file" required><button type="submit">Yükle</button></form>`)
		}

		if d.CanSMS && c.CustomerPhone != "" {
			hw.Printf(`<form class="sms" hx-post="/api/cases/%s/sms" hx-target="#case-flash" hx-swap="innerHTML">`, id)
			hw.Raw(`<textarea name="message" maxlength="612" required></textarea><button type="submit">SMS Gönder</button></form>`)
		}
		return hw.Err()
	})
}
