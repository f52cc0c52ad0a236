// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendExpiryReminder(toEmail string, points int64, days int) error
	SendRechargeCodes(toEmail string, batchNo string, codes []string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	frontendURL string // Added to construct links
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	// Get Frontend URL from ENV or default to a safe placeholder
	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendExpiryReminder(toEmail string, points int64, days int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your PageCraft points are about to expire")

	topUpLink := fmt.Sprintf("%s/points", s.frontendURL)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Points expiring soon</h2>
			<p>You have <strong>%d points</strong> expiring within the next <strong>%d day(s)</strong>.</p>
			<p>Points that expire cannot be recovered. Use them before they lapse:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View My Points</a>
			<p>If you have already spent them, please ignore this email.</p>
		</div>
	`, points, days, topUpLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send expiry reminder to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Expiry reminder sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendRechargeCodes(toEmail string, batchNo string, codes []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.senderEmail, s.senderName))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Recharge codes for batch %s", batchNo))

	codeRows := make([]string, 0, len(codes))
	for _, code := range codes {
		codeRows = append(codeRows, fmt.Sprintf(`<li style="font-family: monospace; letter-spacing: 2px;">%s</li>`, code))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Generated recharge codes</h2>
			<p>Batch <strong>%s</strong> contains %d code(s):</p>
			<ul>%s</ul>
			<p>Each code can be redeemed exactly once. Keep this list private.</p>
		</div>
	`, batchNo, len(codes), strings.Join(codeRows, "\n"))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send recharge codes to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Recharge codes sent to %s\n", toEmail)
	return nil
}
