package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"os"
	"time"
)

const smtpTimeout = 10 * time.Second

// SMTPSender delivers automation emails through a plain SMTP relay
// configured via SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD and
// SMTP_FROM. Each Send is a single synchronous call bounded by a
// connection deadline, so a hung relay fails the action instead of
// stalling the caller.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewSMTPSenderFromEnv() *SMTPSender {
	port := os.Getenv("SMTP_PORT")

	if port == "" {
		port = "587"
	}

	return &SMTPSender{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
		timeout:  smtpTimeout,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	if s.host == "" {
		return fmt.Errorf("SMTP_HOST is not configured")
	}

	timeout := s.timeout

	if timeout <= 0 {
		timeout = smtpTimeout
	}

	addr := net.JoinHostPort(s.host, s.port)

	conn, err := net.DialTimeout("tcp", addr, timeout)

	if err != nil {
		return fmt.Errorf("connect to smtp relay %s: %w", addr, err)
	}

	defer conn.Close()

	// The deadline covers the whole SMTP conversation, greeting included.
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set smtp deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)

	if err != nil {
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}

	defer client.Close()

	if s.username != "" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("smtp starttls: %w", err)
			}
		}

		auth := smtp.PlainAuth("", s.username, s.password, s.host)

		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail from %s: %w", s.from, err)
	}

	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to %s: %w", to, err)
	}

	writer, err := client.Data()

	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.from, to, subject, body)

	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write email body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finish email body: %w", err)
	}

	return client.Quit()
}

// LogEmailSender is a drop-in sender for environments without an SMTP
// relay. It records the send and succeeds.
type LogEmailSender struct{}

func (LogEmailSender) Send(to, subject, body string) error {
	log.Printf("email (log only) to=%s subject=%q", to, subject)
	return nil
}
