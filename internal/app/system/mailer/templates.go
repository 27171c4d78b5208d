// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

// ReferralConfirmationData is the data for the email sent to the referrer.
type ReferralConfirmationData struct {
	AppName         string
	ReferidorNombre string
	CandidatoNombre string
	TituloVacante   string
}

// ReferralConfirmationEmail builds the thank-you email for a referrer.
func ReferralConfirmationEmail(data ReferralConfirmationData) Email {
	var text strings.Builder
	text.WriteString("Hola " + data.ReferidorNombre + ",\n\n")
	text.WriteString("Gracias por referir a " + data.CandidatoNombre)
	if data.TituloVacante != "" {
		text.WriteString(" para la vacante " + data.TituloVacante)
	}
	text.WriteString(". Hemos recibido tu recomendación y la estamos procesando.\n\n")
	text.WriteString("Saludos,\nEl equipo de " + data.AppName)

	return Email{
		Subject:  "Confirmación de referencia enviada - " + data.AppName,
		TextBody: text.String(),
		HTMLBody: render(confirmationHTMLTmpl, data),
	}
}

// AdminReferralNoticeData is the data for the notice sent to the admin inbox.
type AdminReferralNoticeData struct {
	AppName                    string
	ReferidorNombre            string
	ReferidorEmail             string
	CandidatoNombre            string
	CandidatoEmail             string
	TituloVacante              string
	VacanteID                  string
	JustificacionRecomendacion string
	CVURL                      string
	AdminURL                   string
}

// AdminReferralNoticeEmail builds the new-referral notice for administrators.
func AdminReferralNoticeEmail(data AdminReferralNoticeData) Email {
	titulo := data.TituloVacante
	if titulo == "" {
		titulo = "No especificada"
		data.TituloVacante = titulo
	}

	var text strings.Builder
	text.WriteString("Se ha recibido una nueva referencia:\n\n")
	text.WriteString("Referidor: " + data.ReferidorNombre + " (" + data.ReferidorEmail + ")\n")
	text.WriteString("Candidato: " + data.CandidatoNombre + " (" + data.CandidatoEmail + ")\n")
	text.WriteString("Vacante: " + titulo + " (ID: " + data.VacanteID + ")\n")
	text.WriteString("Justificación: " + data.JustificacionRecomendacion + "\n\n")
	if data.CVURL != "" {
		text.WriteString("CV adjunto: " + data.CVURL + "\n\n")
	} else {
		text.WriteString("No se adjuntó CV.\n\n")
	}
	if data.AdminURL != "" {
		text.WriteString("Revisar en el panel de administración: " + data.AdminURL)
	} else {
		text.WriteString("Revisar en el panel de administración.")
	}

	return Email{
		Subject:  "Nueva referencia recibida: " + data.CandidatoNombre + " para " + titulo,
		TextBody: text.String(),
		HTMLBody: render(adminNoticeHTMLTmpl, data),
	}
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// The text part still goes out.
		return ""
	}
	return buf.String()
}

const layoutHead = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f4f4f5;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f4f4f5;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,0.1);">
          <tr>
            <td style="padding: 32px 32px 24px 32px; text-align: center; border-bottom: 1px solid #e4e4e7;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #18181b;">{{.AppName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">`

const layoutFoot = `
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

var confirmationHTMLTmpl = template.Must(template.New("referral_confirmation").Parse(layoutHead + `
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b;">¡Gracias por tu referencia!</h2>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">Hola {{.ReferidorNombre}},</p>
              <p style="margin: 0 0 16px 0; font-size: 15px; line-height: 1.6; color: #52525b;">
                Gracias por referir a <strong>{{.CandidatoNombre}}</strong>{{if .TituloVacante}} para la vacante <strong>{{.TituloVacante}}</strong>{{end}}.
                Hemos recibido tu recomendación y la estamos procesando.
              </p>
              <p style="margin: 0; font-size: 14px; line-height: 1.6; color: #71717a;">Saludos,<br>El equipo de {{.AppName}}</p>` + layoutFoot))

var adminNoticeHTMLTmpl = template.Must(template.New("admin_referral_notice").Parse(layoutHead + `
              <h2 style="margin: 0 0 16px 0; font-size: 20px; font-weight: 600; color: #18181b;">Nueva referencia recibida</h2>
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="font-size: 14px; line-height: 1.6; color: #52525b;">
                <tr><td style="padding: 4px 0; font-weight: 600;">Referidor</td><td>{{.ReferidorNombre}} ({{.ReferidorEmail}})</td></tr>
                <tr><td style="padding: 4px 0; font-weight: 600;">Candidato</td><td>{{.CandidatoNombre}} ({{.CandidatoEmail}})</td></tr>
                <tr><td style="padding: 4px 0; font-weight: 600;">Vacante</td><td>{{.TituloVacante}}</td></tr>
              </table>
              <p style="margin: 16px 0; font-size: 14px; line-height: 1.6; color: #52525b; white-space: pre-wrap;">{{.JustificacionRecomendacion}}</p>
              {{if .CVURL}}<p style="margin: 0 0 16px 0; font-size: 14px;"><a href="{{.CVURL}}" style="color: #4f46e5;">Descargar CV</a></p>{{else}}<p style="margin: 0 0 16px 0; font-size: 14px; color: #71717a;">No se adjuntó CV.</p>{{end}}
              {{if .AdminURL}}<a href="{{.AdminURL}}" style="display: inline-block; padding: 12px 28px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 15px; font-weight: 600; border-radius: 6px;">Revisar en el panel</a>{{end}}` + layoutFoot))
