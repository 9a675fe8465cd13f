package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"text/template"
	"time"
)

// TemplateData holds variables for email templates
type TemplateData struct {
	ResetURL string
	TTL      string
	SiteName string
	SiteURL  string
}

const resetSubject = "Recuperación de contraseña"

const resetTextTemplate = `Hola,

Recibimos una solicitud para restablecer tu contraseña. Abre el siguiente enlace:

{{.ResetURL}}

El enlace caduca en {{.TTL}}.

Si no solicitaste el cambio, ignora este correo.

---
{{.SiteName}}
{{.SiteURL}}`

const resetHTMLTemplate = `<p>Haz click en el siguiente enlace para restablecer tu contraseña:</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
<p>El enlace caduca en {{.TTL}}.</p>
<p>{{.SiteName}}</p>`

var (
	resetText = template.Must(template.New("reset").Parse(resetTextTemplate))
	resetHTML = htmltemplate.Must(htmltemplate.New("reset").Parse(resetHTMLTemplate))
)

// RenderPasswordReset renders the password reset email in text and HTML.
func RenderPasswordReset(data TemplateData) (*Message, error) {
	var text, html bytes.Buffer
	if err := resetText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("rendering reset email: %w", err)
	}
	if err := resetHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("rendering reset email: %w", err)
	}
	return &Message{
		Subject: resetSubject,
		Text:    strings.TrimSpace(text.String()),
		HTML:    html.String(),
	}, nil
}

// FormatDuration formats a duration in Spanish for email templates
// (e.g. "15 minutos", "1 hora").
func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hora"
	}
	if hours > 0 {
		return fmt.Sprintf("%d horas", hours)
	}

	minutes := int(d.Minutes())
	if minutes == 1 {
		return "1 minuto"
	}
	if minutes > 0 {
		return fmt.Sprintf("%d minutos", minutes)
	}

	return "unos momentos"
}
