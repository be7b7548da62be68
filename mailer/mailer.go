// Package mailer delivers HTML mail over SMTP. Send never returns an error:
// every outcome, including a panic in the transport, comes back as a Result.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"storefront/email"
	"storefront/logging"
	"storefront/model"
)

const (
	MessageSent   = "Email sent successfully"
	MessageFailed = "Failed to send email"
)

// ErrInvalidMessage is logged when a Message is missing a field.
var ErrInvalidMessage = errors.New("invalid email message")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// FromName is the display name in the From header; the address is Username.
	FromName string
	// Verify opens and closes a connection before each send.
	Verify bool
}

type Message struct {
	To      string
	Subject string
	HTML    string
}

func (m Message) Validate() error {
	switch {
	case strings.TrimSpace(m.To) == "":
		return fmt.Errorf("%w: recipient required", ErrInvalidMessage)
	case strings.TrimSpace(m.Subject) == "":
		return fmt.Errorf("%w: subject required", ErrInvalidMessage)
	case strings.TrimSpace(m.HTML) == "":
		return fmt.Errorf("%w: body required", ErrInvalidMessage)
	}
	return nil
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Sender is the SMTP transport. *gomail.Dialer satisfies it.
type Sender interface {
	Dial() (gomail.SendCloser, error)
	DialAndSend(m ...*gomail.Message) error
}

type Dispatcher struct {
	cfg    Config
	sender Sender
	logger logging.Logger
}

type Option func(*Dispatcher)

// WithSender replaces the SMTP dialer.
func WithSender(s Sender) Option { return func(d *Dispatcher) { d.sender = s } }

// NewDispatcher dials cfg.Host:cfg.Port. Port 465 uses implicit TLS; other
// ports upgrade with STARTTLS when the server offers it.
func NewDispatcher(cfg Config, logger logging.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = logging.NoOp()
	}
	if cfg.FromName == "" {
		cfg.FromName = email.DefaultBrand
	}
	d := &Dispatcher{
		cfg:    cfg,
		logger: logger.With(map[string]interface{}{"component": "mailer"}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.sender == nil {
		d.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return d
}

// Send delivers one message.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (res Result) {
	fields := map[string]interface{}{"to": msg.To, "subject": msg.Subject}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Mail transport panicked", withErr(fields, fmt.Errorf("%v", r)))
			res = Result{Success: false, Message: MessageFailed}
		}
	}()

	if err := d.send(ctx, msg); err != nil {
		d.logger.Error("Error sending email", withErr(fields, err))
		return Result{Success: false, Message: MessageFailed}
	}
	d.logger.Info("Email sent", fields)
	return Result{Success: true, Message: MessageSent}
}

func (d *Dispatcher) send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.cfg.Verify {
		c, err := d.sender.Dial()
		if err != nil {
			return fmt.Errorf("verify smtp connection: %w", err)
		}
		_ = c.Close()
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", d.cfg.Username, d.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	return d.sender.DialAndSend(m)
}

// SendOrderConfirmation renders the snapshot and mails it to the customer.
// A render failure is reported like a send failure.
func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, r email.Renderer, s model.OrderSnapshot, now time.Time) Result {
	html, err := r.Render(s, now)
	if err != nil {
		d.logger.Error("Error rendering confirmation email", map[string]interface{}{
			"order_number": s.OrderNumber,
			"error":        err,
		})
		return Result{Success: false, Message: MessageFailed}
	}
	return d.Send(ctx, Message{
		To:      s.CustomerEmail,
		Subject: email.Subject(s.OrderNumber),
		HTML:    html,
	})
}

func withErr(fields map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = err
	return out
}
