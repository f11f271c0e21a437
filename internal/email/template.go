package email

import (
	"html/template"
	"strings"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { font-family: Arial, sans-serif; color: #333; }
    .container { max-width: 480px; margin: 0 auto; padding: 24px; }
    .header { background-color: #1f2937; color: #ffffff; padding: 16px 24px; border-radius: 8px 8px 0 0; }
    .content { border: 1px solid #e5e7eb; border-top: none; padding: 24px; border-radius: 0 0 8px 8px; }
    .code { font-size: 32px; font-weight: bold; letter-spacing: 8px; text-align: center; padding: 16px; background-color: #f3f4f6; border-radius: 8px; margin: 24px 0; }
    .footer { color: #6b7280; font-size: 12px; margin-top: 24px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h2>Libro Library</h2>
    </div>
    <div class="content">
      <p>Hello {{.Name}},</p>
      <p>Thank you for registering with Libro Library. Use the code below to verify your email address:</p>
      <div class="code">{{.Code}}</div>
      <p>This code expires in 24 hours.</p>
      <p class="footer">If you did not create an account, you can safely ignore this email.</p>
    </div>
  </div>
</body>
</html>`))

func renderVerificationEmail(name, code string) (string, error) {
	var buf strings.Builder
	err := verificationTemplate.Execute(&buf, struct {
		Name string
		Code string
	}{Name: name, Code: code})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
