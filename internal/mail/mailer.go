// Package mail renders and delivers account emails over SMTP.
package mail

import (
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/config"
)

//go:embed templates/*
var templateFS embed.FS

// Template names.
const (
	TemplateWelcome       = "welcome"
	TemplatePasswordReset = "passwordReset"
)

// Recipient addresses one account holder.
type Recipient struct {
	Email     string
	FirstName string
}

// Mailer sends account emails.
type Mailer interface {
	SendWelcome(ctx context.Context, to Recipient, url string) error
	SendPasswordReset(ctx context.Context, to Recipient, url string) error
}

// Sender delivers composed messages. *gomail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

type templateData struct {
	FirstName string
	URL       string
	Subject   string
	Brand     string
}

// SMTPMailer renders the embedded templates and hands messages to a Sender.
type SMTPMailer struct {
	sender   Sender
	from     string
	fromName string
	html     *htmltemplate.Template
	text     *texttemplate.Template
	logger   *zap.Logger
}

// NewSMTPClient builds a go-mail client from config. Authentication is only enabled when
// a username is configured.
func NewSMTPClient(cfg config.MailConfig) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	return gomail.NewClient(cfg.Host, opts...)
}

// NewSMTPMailer parses the templates once.
func NewSMTPMailer(sender Sender, cfg config.MailConfig, logger *zap.Logger) (*SMTPMailer, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text templates: %w", err)
	}
	return &SMTPMailer{
		sender:   sender,
		from:     cfg.From,
		fromName: cfg.FromName,
		html:     html,
		text:     text,
		logger:   logger,
	}, nil
}

// SendWelcome greets a new account and links to its page.
func (m *SMTPMailer) SendWelcome(ctx context.Context, to Recipient, url string) error {
	return m.send(ctx, to, TemplateWelcome, fmt.Sprintf("Welcome to the %s Family!", m.fromName), url)
}

// SendPasswordReset mails the one-time reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to Recipient, url string) error {
	return m.send(ctx, to, TemplatePasswordReset, "Your password reset token (valid for 10 mins)", url)
}

func (m *SMTPMailer) send(ctx context.Context, to Recipient, template, subject, url string) error {
	msg, err := m.compose(to, template, subject, url)
	if err != nil {
		return err
	}
	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send %s mail: %w", template, err)
	}
	m.logger.Info("mail sent", zap.String("template", template), zap.String("to", to.Email))
	return nil
}

func (m *SMTPMailer) compose(to Recipient, template, subject, url string) (*gomail.Msg, error) {
	data := templateData{FirstName: to.FirstName, URL: url, Subject: subject, Brand: m.fromName}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("mail from: %w", err)
	}
	if err := msg.To(to.Email); err != nil {
		return nil, fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(subject)
	if err := msg.SetBodyTextTemplate(m.text.Lookup(template+".txt"), data); err != nil {
		return nil, fmt.Errorf("render %s text: %w", template, err)
	}
	if err := msg.AddAlternativeHTMLTemplate(m.html.Lookup(template+".html"), data); err != nil {
		return nil, fmt.Errorf("render %s html: %w", template, err)
	}
	return msg, nil
}
