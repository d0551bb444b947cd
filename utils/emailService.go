package utils

import (
	"fmt"
	"log"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer sends transactional email through SendGrid. A Mailer built without
// an API key (or a nil Mailer) silently drops every send, so callers never
// have to guard the email path.
type Mailer struct {
	client *sendgrid.Client
	sender string
}

// NewMailer builds a Mailer. An empty apiKey disables outgoing email.
func NewMailer(apiKey, sender string) *Mailer {
	if apiKey == "" {
		log.Println("[MAIL] SENDGRID_API_KEY not set, outgoing email disabled")
		return &Mailer{sender: sender}
	}
	return &Mailer{client: sendgrid.NewSendClient(apiKey), sender: sender}
}

// Send delivers a single HTML email.
func (m *Mailer) Send(toEmail, toName, subject, plainBody, htmlBody string) error {
	if m == nil || m.client == nil {
		return nil
	}

	from := mail.NewEmail("Classroom", m.sender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, htmlBody)

	resp, err := m.client.Send(message)
	if err != nil {
		log.Printf("[MAIL] Error sending %q to %s: %v", subject, toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("[MAIL] SendGrid rejected %q to %s: %d %s", subject, toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

// HTML wrapper shared by every outgoing email
func emailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1D3557; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1D3557; line-height: 1.6; }
			.content h2 { color: #1D3557; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #457B9D; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>CLASSROOM</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Classroom. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// SendGradeNotification tells a student their submission was graded.
func (m *Mailer) SendGradeNotification(email, name, title string, grade float64, totalPoints uint) error {
	subject := "Graded: " + title
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your submission for <strong>%s</strong> has been graded.</p>
		<div class="info-box">
			<strong>Grade:</strong> %.1f / %d
		</div>
		<p>Login to your dashboard to read the full feedback.</p>
	`, name, title, grade, totalPoints)
	plain := fmt.Sprintf("Your submission for %s was graded %.1f/%d.", title, grade, totalPoints)

	return m.Send(email, name, subject, plain, emailTemplate("Submission Graded", body))
}

// SendDueReminder nudges a student who has not submitted yet.
func (m *Mailer) SendDueReminder(email, name, title string, dueDate time.Time) error {
	subject := "Due soon: " + title
	due := dueDate.Format("January 2, 2006 at 3:04 PM")
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p><strong>%s</strong> is due on <strong>%s</strong> and we have not received your submission yet.</p>
		<p>Submit before the deadline to avoid a late mark.</p>
	`, name, title, due)
	plain := fmt.Sprintf("%s is due on %s and you have not submitted yet.", title, due)

	return m.Send(email, name, subject, plain, emailTemplate("Submission Due Soon", body))
}
