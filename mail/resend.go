package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

type resendDispatcher struct {
	client    *resend.Client
	fromEmail string
	appName   string
}

// NewResendDispatcher creates a [Dispatcher] backed by the Resend API.
//
// apiKey is the Resend API key. fromEmail must belong to a domain verified
// with Resend. appName appears in the sender line and the mail body.
func NewResendDispatcher(apiKey, fromEmail, appName string) Dispatcher {
	return &resendDispatcher{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appName:   appName,
	}
}

// SendActivationCode delivers the activation code email.
//
// The code expires with the activation token (minutes, not hours), so the
// body states a short validity window.
func (s *resendDispatcher) SendActivationCode(ctx context.Context, toEmail, name, code string) error {
	if name == "" {
		name = "there"
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin:0;padding:0;background-color:#f4f4f7;font-family:Arial,Helvetica,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background-color:#f4f4f7;padding:40px 0;">
    <tr>
      <td align="center">
        <table width="480" cellpadding="0" cellspacing="0" style="background-color:#ffffff;border-radius:8px;padding:40px;">
          <tr>
            <td>
              <h1 style="color:#1f2937;font-size:24px;margin:0 0 8px 0;">%s</h1>
              <h2 style="color:#1f2937;font-size:18px;margin:0 0 24px 0;">Activate your account</h2>
              <p style="color:#4b5563;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
                Hi %s, use the code below to finish creating your account.
              </p>
              <p style="color:#111827;font-size:32px;font-weight:700;letter-spacing:8px;margin:0 0 24px 0;">%s</p>
              <p style="color:#6b7280;font-size:13px;line-height:1.6;margin:0;">
                The code is valid for a few minutes. If you didn't sign up, you can safely ignore this email.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, s.appName, name, code)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.appName, s.fromEmail),
		To:      []string{toEmail},
		Subject: fmt.Sprintf("%s activation code", s.appName),
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send activation email: %w", err)
	}

	return nil
}
