package services

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"clutchjobs/config"
)

type EmailNotificationService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	fromEmail    string
	supportEmail string
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewEmailNotificationService(cfg config.EmailConfig) *EmailNotificationService {
	return &EmailNotificationService{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUsername: cfg.SMTPUsername,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    cfg.FromEmail,
		supportEmail: cfg.SupportEmail,
	}
}

func (s *EmailNotificationService) SendApplicationConfirmation(toEmail, candidateName, jobTitle, companyName string) error {
	template := EmailTemplate{
		Subject: fmt.Sprintf("Application Submitted - %s at %s", jobTitle, companyName),
		Body: fmt.Sprintf(`
Hello %s,

Your application has been successfully submitted.

Job Details:
- Position: %s
- Company: %s
- Submitted: %s

The hiring team at %s will review your application and screening interview, and contact you if you're a good fit for the role.

Best regards,
Clutch Jobs Team
		`, candidateName, jobTitle, companyName, time.Now().Format("January 2, 2006 at 3:04 PM"), companyName),
	}
	return s.send(toEmail, template)
}

func (s *EmailNotificationService) SendInterviewAudioStored(toEmail, candidateName, jobTitle string) error {
	template := EmailTemplate{
		Subject: fmt.Sprintf("Interview Recording Processed - %s", jobTitle),
		Body: fmt.Sprintf(`
Hello %s,

The audio from your AI screening interview for the %s position has been processed and attached to your application.

You can review your application in your dashboard.

Best regards,
Clutch Jobs Team
		`, candidateName, jobTitle),
	}
	return s.send(toEmail, template)
}

func (s *EmailNotificationService) SendJobPostingWelcome(toEmail, contactName, jobTitle, tempPassword string) error {
	template := EmailTemplate{
		Subject: fmt.Sprintf("Your job posting is live - %s", jobTitle),
		Body: fmt.Sprintf(`
Hello %s,

Your job posting for %s has been created and is now visible to candidates.

An employer account has been prepared for you. Sign in with this email and the temporary password below, then change it from your profile settings.

Temporary password: %s

Best regards,
Clutch Jobs Team
		`, contactName, jobTitle, tempPassword),
	}
	return s.send(toEmail, template)
}

// GenerateTempPassword returns a random password for employer accounts
// created through the public job posting intake.
func GenerateTempPassword() string {
	const chars = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("clutch-%d", time.Now().UnixNano())
	}
	for i, b := range buf {
		buf[i] = chars[int(b)%len(chars)]
	}
	return string(buf)
}

func (s *EmailNotificationService) SendSupportMessage(fromEmail, message string) error {
	template := EmailTemplate{
		Subject: fmt.Sprintf("Support request from %s", fromEmail),
		Body: fmt.Sprintf(`
New support message received.

From: %s

%s
		`, fromEmail, message),
	}
	return s.send(s.supportEmail, template)
}

// send delivers via SMTP when configured; otherwise the email is logged so
// development environments work without a mail server.
func (s *EmailNotificationService) send(toEmail string, template EmailTemplate) error {
	if toEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	if s.smtpHost == "" {
		log.Printf("EMAIL NOTIFICATION:")
		log.Printf("To: %s", toEmail)
		log.Printf("Subject: %s", template.Subject)
		log.Printf("Body: %s", template.Body)
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.fromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", template.Subject)
	msg.WriteString("\r\n")
	msg.WriteString(template.Body)

	addr := s.smtpHost + ":" + s.smtpPort
	auth := smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	if err := smtp.SendMail(addr, auth, s.fromEmail, []string{toEmail}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Email sent to %s: %s", toEmail, template.Subject)
	return nil
}
