package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig holds the transport settings for the SMTP mailer.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Sender     string
	SenderName string
}

// SMTPMailer sends OTP mail through an SMTP relay using go-mail.
type SMTPMailer struct {
	client *gomail.Client
	cfg    SMTPConfig
}

// NewSMTPMailer constructs the mailer and its underlying client. The client
// dials lazily, so construction succeeds even when the relay is down.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client init: %w", err)
	}
	return &SMTPMailer{client: client, cfg: cfg}, nil
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, toEmail, username, code string) error {
	intro := "Thank you for choosing Emotify. Use the following OTP to complete your Sign Up procedures. This OTP is valid for 5 minutes."
	return m.send(ctx, toEmail, verifySubject, username, intro, code)
}

func (m *SMTPMailer) SendNewCode(ctx context.Context, toEmail, username, code string) error {
	intro := "Here is your new verification code. It is valid for 5 minutes."
	return m.send(ctx, toEmail, newCodeSubject, username, intro, code)
}

func (m *SMTPMailer) send(ctx context.Context, toEmail, subject, username, intro, code string) error {
	html, text, err := renderOTPMail(username, intro, code)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.SenderName, m.cfg.Sender); err != nil {
		return fmt.Errorf("mail sender: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("mail recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, text)
	msg.AddAlternativeString(gomail.TypeTextHTML, html)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
