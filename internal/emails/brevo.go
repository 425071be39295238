package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Sender delivers the visitor invite carrying the check-in code. Nil or an
// unset API key means no-op; invite delivery is always best-effort and
// never blocks visitor creation.
type Sender interface {
	SendVisitorInvite(ctx context.Context, toEmail, visitorName, hostName, otp, qrDataURI string) error
}

// BrevoClient sends emails via the Brevo API. Env: BREVO_API_KEY, MAIL_FROM.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@vms.local"
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "Visitor Management"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendVisitorInvite sends the visit invitation with the 6-digit code and
// its QR image. The visitor shows either one at the gate.
func (c *BrevoClient) SendVisitorInvite(ctx context.Context, toEmail, visitorName, hostName, otp, qrDataURI string) error {
	if c.APIKey == "" {
		return nil
	}
	content := visitorInviteContent(visitorName, hostName, otp, qrDataURI)
	return c.send(ctx, toEmail, "Your visit is confirmed", EmailLayout(content))
}

func visitorInviteContent(visitorName, hostName, otp, qrDataURI string) string {
	if visitorName == "" {
		visitorName = "there"
	}
	return fmt.Sprintf(`
    <h1>Hi %s, your visit is confirmed</h1>
    <p>%s is expecting you. Show the QR code below at the reception desk, or enter the 6-digit code on the kiosk to check in.</p>
    <center>
      <img src="%s" alt="Check-in QR code" width="200" height="200" style="display:block;margin:0 auto 16px auto;" />
      <p style="font-size:28px;letter-spacing:8px;font-weight:700;margin:0 0 16px 0;">%s</p>
    </center>
    <p style="margin-top:20px;font-size:14px;color:#666;">
      This code is valid for one check-in and the matching check-out. If you were not expecting this invitation, you can safely ignore this email.
    </p>
`, EscapeHTML(visitorName), EscapeHTML(hostName), qrDataURI, EscapeHTML(otp))
}
