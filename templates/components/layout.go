package components

import (
	"context"
	"io"

	"claim_flow_app_go/middleware"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services/permissions"

	"github.com/a-h/templ"
)

// Page carries what the shell needs around a page body
type Page struct {
	Title     string
	CSRFToken string
	User      *models.User
	Nav       []permissions.PageAccess
	Active    string
	Unread    int64
}

// Head renders the document head shared by the shell and the bare pages
func Head(title string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		nonce := middleware.GetNonce(ctx)
		hw := NewWriter(w)
		hw.Raw(`<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Raw(`<title>`).Text(title).Raw(`</title>`)
		hw.Printf(`<link rel="icon" href="%s">`, middleware.AssetURL(ctx, "images/favicon.png"))
		hw.Printf(`<link rel="stylesheet" href="%s">`, middleware.AssetURL(ctx, "css/app.css"))
		hw.Printf(`<script nonce="%s" src="https://unpkg.com/htmx.org@2.0.4" defer></script>`, nonce)
		hw.Printf(`<script nonce="%s" src="%s" defer></script>`, nonce, middleware.AssetURL(ctx, "js/app.js"))
		hw.Raw(`</head>`)
		return hw.Err()
	})
}

// Layout wraps body in the authenticated application shell
func Layout(p Page, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := NewWriter(w)
		hw.Raw(`<!doctype html><html lang="tr">`)
		hw.Component(ctx, Head(p.Title))
		hw.Printf(`<body hx-headers='{"X-CSRF-Token": "%s"}'>`, p.CSRFToken)
		hw.Raw(`<div class="shell"><nav class="sidebar"><a class="brand" href="/dashboard">Hasar Portal</a><ul>`)
		for _, item := range p.Nav {
			var class Safe
			if item.ID == p.Active {
				class = ` class="active"`
			}
			hw.Printf(`<li%s><a href="%s">`, class, item.Path).Text(item.Label).Raw(`</a></li>`)
		}
		hw.Raw(`</ul></nav><main>`)
		hw.Raw(`<header class="topbar"><h1>`).Text(p.Title).Raw(`</h1>`)
		if p.User != nil {
			hw.Raw(`<div class="user">`)
			hw.Raw(`<a class="bell" href="#" hx-get="/notifications" hx-target="#notifications" hx-swap="innerHTML">`)
			hw.Raw(`Bildirimler`)
			if p.Unread > 0 {
				hw.Printf(` <span class="badge">%d</span>`, p.Unread)
			}
			hw.Raw(`</a><span>`).Text(p.User.Name).Raw(`</span>`)
			hw.Printf(`<form method="post" action="/logout"><input type="hidden" name="_csrf" value="%s"><button type="submit">Çıkış</button></form>`, p.CSRFToken)
			hw.Raw(`</div>`)
		}
		hw.Raw(`</header><div id="notifications"></div><section class="content">`)
		hw.Component(ctx, body)
		hw.Raw(`</section></main></div></body></html>`)
		return hw.Err()
	})
}

// Alert renders an inline error box, used for HTMX form errors
func Alert(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return NewWriter(w).Raw(`<div class="alert alert-error" role="alert">`).Text(message).Raw(`</div>`).Err()
	})
}

// Notice renders an inline success box
func Notice(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return NewWriter(w).Raw(`<div class="alert alert-success" role="status">`).Text(message).Raw(`</div>`).Err()
	})
}

// StatusBadge renders a case status label
func StatusBadge(status, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return NewWriter(w).
			Printf(`<span class="status status-%s">`, status).
			Text(label).
			Raw(`</span>`).
			Err()
	})
}
