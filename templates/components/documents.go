package components

import (
	"context"
	"io"

	"claim_flow_app_go/models"
	"claim_flow_app_go/services/casefile"

	"github.com/a-h/templ"
)

// Checklist renders the required document checklist of a case
func Checklist(items []casefile.ChecklistItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<ul id="checklist" class="checklist">`)
		for _, item := range items {
			class := "missing"
			switch {
			case item.Complete:
				class = "complete"
			case item.Satisfied:
				class = "partial"
			}
			hw.Printf(`<li class="%s">`, class).Text(item.Label)
			hw.Printf(` <span class="count">%d/%d</span></li>`, item.Uploaded, item.MinCount)
		}
		hw.Raw(`</ul>`)
		return hw.Err()
	})
}

// DocumentDisplay is one document row with its resolved display name
type DocumentDisplay struct {
	Document  models.CaseDocument
	Name      string
	CanDelete bool
}

// DocumentRows renders the document table body of a case
func DocumentRows(docs []DocumentDisplay) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<tbody id="documents">`)
		if len(docs) == 0 {
			hw.Raw(`<tr><td colspan="5" class="empty">Henüz evrak yüklenmedi.</td></tr>`)
		}
		for _, d := range docs {
			doc := d.Document
			label := casefile.KindLabel(doc.Kind)
			hw.Printf(`<tr id="document-%s"><td>`, doc.ID).Text(label)
			if doc.IsResult {
				hw.Raw(` <span class="tag">Sonuç</span>`)
			}
			hw.Printf(`</td><td><a href="%s">`, doc.GetDownloadURL()).Text(d.Name).Raw(`</a></td>`)
			hw.Raw(`<td>`).Text(FormatFileSize(doc.FileSize)).Raw(`</td>`)
			hw.Raw(`<td>`).Text(FormatDate(&doc.CreatedAt)).Raw(`</td><td>`)
			if d.CanDelete {
				hw.Printf(`<button class="danger" hx-delete="/api/cases/%s/documents/%s" hx-confirm="Evrak silinsin mi?" hx-target="#document-%s" hx-swap="outerHTML">Sil</button>`,
					doc.CaseID, doc.ID, doc.ID)
			}
			hw.Raw(`</td></tr>`)
		}
		hw.Raw(`</tbody>`)
		return hw.Err()
	})
}
