package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log"
	texttemplate "text/template"

	"claim_flow_app_go/config"

	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// emailTemplate pairs the HTML and plain text bodies of one message
type emailTemplate struct {
	html *template.Template
	text *texttemplate.Template
}

func newEmailTemplate(name, htmlBody, textBody string) emailTemplate {
	return emailTemplate{
		html: template.Must(template.New(name + ".html").Parse(emailLayoutStart + htmlBody + emailLayoutEnd)),
		text: texttemplate.Must(texttemplate.New(name + ".txt").Parse(textBody)),
	}
}

func (t emailTemplate) render(data interface{}) (string, string, error) {
	var html, text bytes.Buffer
	if err := t.html.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", t.html.Name(), err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", t.text.Name(), err)
	}
	return html.String(), text.String(), nil
}

// buildEmail renders a template for one recipient; a render error leaves the
// bodies empty so SendEmail refuses the message.
func buildEmail(tmpl emailTemplate, subject, toEmail string, data interface{}) *Email {
	htmlBody, textBody, err := tmpl.render(data)
	if err != nil {
		log.Printf("Error rendering email %q: %v", subject, err)
	}
	return &Email{
		To:       []string{toEmail},
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}
}

var (
	ErrEmailNotConfigured = errors.New("RESEND_API_KEY not configured")
	ErrEmailIncomplete    = errors.New("email needs a recipient and a body")
)

func (e *Email) validate() error {
	if len(e.To) == 0 || (e.HTMLBody == "" && e.TextBody == "") {
		return ErrEmailIncomplete
	}
	return nil
}

func (e *Email) clone() *Email {
	c := *e
	c.To = append([]string(nil), e.To...)
	return &c
}

// SendEmail delivers through Resend. With EMAIL_TEST_MODE the message is
// only written to the log.
func SendEmail(cfg *config.Config, email *Email) error {
	if err := email.validate(); err != nil {
		return err
	}
	if cfg.EmailTestMode {
		log.Printf("[EMAIL] test mode, not sent | To: %v | Subject: %s\n%s",
			email.To, email.Subject, email.TextBody)
		return nil
	}
	if cfg.ResendAPIKey == "" {
		return ErrEmailNotConfigured
	}

	sent, err := resend.NewClient(cfg.ResendAPIKey).Emails.Send(&resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	})
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	log.Printf("[EMAIL] sent %s to %v", sent.Id, email.To)
	return nil
}

// SendEmailAsync sends a copy of email in the background so handlers never
// wait on the mail provider.
func SendEmailAsync(cfg *config.Config, email *Email) {
	msg := email.clone()
	go func() {
		if err := SendEmail(cfg, msg); err != nil {
			log.Printf("[EMAIL] %q to %v failed: %v", msg.Subject, msg.To, err)
		}
	}()
}

const emailLayoutStart = `<!DOCTYPE html><html lang="tr"><body style="font-family:Arial,sans-serif;color:#1f2937">`
const emailLayoutEnd = `<p style="color:#6b7280;font-size:12px">Bu e-posta otomatik olarak gönderilmiştir.</p></body></html>`

var welcomeTemplate = newEmailTemplate("welcome",
	`<p>Merhaba {{.UserName}},</p>
<p>Hasar Portal hesabınız oluşturuldu.</p>
<p>E-posta: <b>{{.UserEmail}}</b><br>Geçici şifre: <b>{{.Password}}</b></p>
<p><a href="{{.LoginURL}}">Giriş yapın</a> ve şifrenizi değiştirin.</p>`,
	`Merhaba {{.UserName}},

Hasar Portal hesabınız oluşturuldu.
E-posta: {{.UserEmail}}
Geçici şifre: {{.Password}}
Giriş: {{.LoginURL}}
`)

// WelcomeEmailData contains data for the welcome email
type WelcomeEmailData struct {
	UserName  string
	UserEmail string
	Password  string
	LoginURL  string
}

// BuildWelcomeEmail creates the welcome email of a user created by an administrator
func BuildWelcomeEmail(userEmail, userName, password, loginURL string) *Email {
	data := WelcomeEmailData{
		UserName:  userName,
		UserEmail: userEmail,
		Password:  password,
		LoginURL:  loginURL,
	}
	return buildEmail(welcomeTemplate, "Hasar Portal hesabınız oluşturuldu", userEmail, data)
}

var caseStatusTemplate = newEmailTemplate("case_status",
	`<p>Sayın {{.CustomerName}},</p>
<p><b>{{.CaseNumber}}</b> numaralı dosyanızın durumu güncellendi.</p>
<p>Önceki durum: {{.PreviousStatus}}<br>Yeni durum: <b>{{.Status}}</b></p>
{{if .Missing}}<p>Eksik evraklar:</p><ul>{{range .Missing}}<li>{{.}}</li>{{end}}</ul>{{end}}
<p><a href="{{.CaseURL}}">Dosyayı görüntüleyin</a></p>`,
	`Sayın {{.CustomerName}},

{{.CaseNumber}} numaralı dosyanızın durumu güncellendi.
Önceki durum: {{.PreviousStatus}}
Yeni durum: {{.Status}}
{{if .Missing}}
Eksik evraklar:
{{range .Missing}}- {{.}}
{{end}}{{end}}
{{.CaseURL}}
`)

// CaseStatusEmailData contains data for the status change email
type CaseStatusEmailData struct {
	CustomerName   string
	CaseNumber     string
	PreviousStatus string
	Status         string
	Missing        []string
	CaseURL        string
}

// BuildCaseStatusEmail notifies a customer about a status change
func BuildCaseStatusEmail(customerEmail string, data CaseStatusEmailData) *Email {
	subject := fmt.Sprintf("%s dosyanızın durumu: %s", data.CaseNumber, data.Status)
	return buildEmail(caseStatusTemplate, subject, customerEmail, data)
}
