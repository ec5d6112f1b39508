package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendModerationAlert(toEmail, sessionId, contentType, reason string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

func (s *emailService) SendModerationAlert(toEmail, sessionId, contentType, reason string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Moderation Alert: Content Blocked")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Content Blocked</h2>
			<p>A chat session was blocked by the moderation gate.</p>
			<ul>
				<li><strong>Session:</strong> %s</li>
				<li><strong>Content type:</strong> %s</li>
				<li><strong>Reason:</strong> %s</li>
			</ul>
			<p>Review the moderation logs for the full detail.</p>
		</div>
	`, sessionId, contentType, reason)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send moderation alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Moderation alert sent to %s\n", toEmail)
	return nil
}
