package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/neomorfeo/settle/internal/domain"
)

var activatedTemplate = template.Must(template.New("account_activated").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>You can now accept payments</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 0; background-color: #f5f5f5;">
<table role="presentation" style="max-width: 520px; margin: 40px auto; background: #ffffff; border-radius: 8px;">
<tr><td style="padding: 32px 40px;">
<h1 style="margin: 0 0 16px; font-size: 22px; color: #1a1a1a;">{{.CompanyName}} is ready to take payments</h1>
<p style="margin: 0 0 16px; color: #444; font-size: 15px; line-height: 1.5;">
Your payment account has been verified. Card payments taken at checkout now settle straight into your connected account.
</p>
<p style="margin: 0 0 16px; color: #444; font-size: 15px; line-height: 1.5;">
We keep a flat fee of <strong>{{.Fee}}</strong> per payment. There are no monthly charges.
</p>
<p style="margin: 0; color: #999; font-size: 13px;">
Payouts follow your account's payout schedule.
</p>
</td></tr>
</table>
</body>
</html>`))

// ActivatedData holds template data for the activation email.
type ActivatedData struct {
	CompanyName string
	Fee         string
}

// RenderActivated renders the "now able to accept payments" notice.
func RenderActivated(n domain.Notification) (subject, html, text string, err error) {
	data := ActivatedData{
		CompanyName: n.CompanyName,
		Fee:         FormatFee(n.FlatFee, n.Currency),
	}
	if data.CompanyName == "" {
		data.CompanyName = "Your business"
	}

	var buf bytes.Buffer
	if err := activatedTemplate.Execute(&buf, data); err != nil {
		return "", "", "", fmt.Errorf("render activation template: %w", err)
	}

	subject = "You can now accept payments"
	text = fmt.Sprintf("%s is ready to take payments.\n\nYour payment account has been verified. Card payments taken at checkout now settle straight into your connected account.\n\nWe keep a flat fee of %s per payment. There are no monthly charges.",
		data.CompanyName, data.Fee)
	return subject, buf.String(), text, nil
}

// FormatFee renders a minor-unit fee in major units, e.g. "1.00 GBP".
func FormatFee(minor int64, currency string) string {
	return domain.FormatMajor(minor) + " " + strings.ToUpper(currency)
}
