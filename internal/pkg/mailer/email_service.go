package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendMatchNotification(toEmail, lawyerName, area, subarea string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendMatchNotification(toEmail, lawyerName, area, subarea string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "New Case Match")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello %s,</h2>
			<p>A new case was matched to your profile:</p>
			<p><b>Area:</b> %s<br/><b>Matter:</b> %s</p>
			<p>Open your dashboard to review the case details and respond.</p>
			<p>If you are not taking new cases, update your availability in your profile.</p>
		</div>
	`, lawyerName, area, subarea)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send match notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Match notification sent to %s\n", toEmail)
	return nil
}
