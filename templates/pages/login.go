package pages

import (
	"context"
	"io"

	"claim_flow_app_go/templates/components"

	"github.com/a-h/templ"
)

// Login renders the sign-in form. errMsg is shown above the form when set.
func Login(title, csrfToken, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := components.NewWriter(w)
		hw.Raw(`<!doctype html><html lang="tr">`)
		hw.Component(ctx, components.Head(title))
		hw.Raw(`<body class="login"><main class="login-card"><h1>Hasar Portal</h1>`)
		hw.Raw(`<div id="login-error">`)
		if errMsg != "" {
			hw.Component(ctx, components.Alert(errMsg))
		}
		hw.Raw(`</div>`)
		hw.Raw(`<form method="post" action="/login" hx-post="/login" hx-target="#login-error" hx-swap="innerHTML">`)
		hw.Printf(`<input type="hidden" name="_csrf" value="%s">`, csrfToken)
		hw.Raw(`<label>E-posta<input type="email" name="email" autocomplete="username" required></label>`)
		hw.Raw(`<label>Parola<input type="password" name="password" autocomplete="current-password" required></label>`)
		hw.Raw(`<button type="submit">Giriş Yap</button></form></main></body></html>`)
		return hw.Err()
	})
}
