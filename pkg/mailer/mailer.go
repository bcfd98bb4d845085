// Package mailer 负责发送行程邀请邮件（Resend）。
package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
)

// InvitationEmail 邀请邮件内容
type InvitationEmail struct {
	TripID       string
	TripName     string
	InviterEmail string
	InviteeEmail string
}

// Mailer 邮件发送接口
type Mailer interface {
	SendInvitation(email InvitationEmail) (string, error)
}

// invitationTemplate 邀请邮件HTML模板
var invitationTemplate = template.Must(template.New("invitation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #1a73e8;">You have been invited to join a trip! ✈️</h2>
  <p><strong>{{.InviterEmail}}</strong> invited you to join the trip <strong>{{.TripName}}</strong>.</p>
  <p>Sign in with this email address ({{.InviteeEmail}}) to see the trip and respond to the invitation.</p>
  <a href="{{.DashboardURL}}"
     style="display: inline-block; background-color: #1a73e8; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none; margin-top: 16px;">
    View the trip
  </a>
  <p style="color: #888; font-size: 12px; margin-top: 32px;">
    If you were not expecting this invitation you can ignore this email.
  </p>
</div>
`))

// ResendMailer 基于Resend API的实现
type ResendMailer struct {
	client *resend.Client
	from   string
	appURL string
}

// NewResendMailer 创建Resend邮件客户端
func NewResendMailer(apiKey, from, appURL string) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		appURL: appURL,
	}
}

// SendInvitation 发送邀请邮件，返回Resend的邮件ID
func (m *ResendMailer) SendInvitation(email InvitationEmail) (string, error) {
	var body bytes.Buffer
	err := invitationTemplate.Execute(&body, struct {
		InvitationEmail
		DashboardURL string
	}{
		InvitationEmail: email,
		DashboardURL:    m.appURL + "/dashboard",
	})
	if err != nil {
		return "", fmt.Errorf("failed to render invitation email: %w", err)
	}

	sent, err := m.client.Emails.Send(&resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email.InviteeEmail},
		Subject: fmt.Sprintf("Invitation to join the trip %s", email.TripName),
		Html:    body.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send invitation email: %w", err)
	}

	return sent.Id, nil
}

// LogMailer 未配置RESEND_API_KEY时的降级实现：只打日志不发信
type LogMailer struct{}

func (LogMailer) SendInvitation(email InvitationEmail) (string, error) {
	fmt.Printf("📧 [dry-run] invitation email to %s for trip %q (inviter %s)\n",
		email.InviteeEmail, email.TripName, email.InviterEmail)
	return "", nil
}

// FromConfig 根据配置选择实现
func FromConfig(apiKey, from, appURL string) Mailer {
	if apiKey == "" {
		return LogMailer{}
	}
	return NewResendMailer(apiKey, from, appURL)
}
