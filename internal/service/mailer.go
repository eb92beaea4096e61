package service

import (
	"fmt"

	"github.com/DHFin/dhf-pay-back-private/config"
	"github.com/shopspring/decimal"

	gomail "gopkg.in/gomail.v2"
)

// Mailer sends customer receipts. Implementations are best-effort
// collaborators; callers log failures and move on.
type Mailer interface {
	SendTransactionCreated(to, storeName, status string) error
	SendPaymentBill(to, billURL, storeName, comment string, amount decimal.Decimal) error
}

// SMTPMailer delivers over plain SMTP via gomail.
type SMTPMailer struct {
	cfg    *config.MailerConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg *config.MailerConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return m.dialer.DialAndSend(msg)
}

func (m *SMTPMailer) SendTransactionCreated(to, storeName, status string) error {
	subject := fmt.Sprintf("Payment to store %s", storeName)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your transaction to store <b>%s</b> was registered and is now <b>%s</b>.</p>",
		to, storeName, status,
	)
	return m.send(to, subject, body)
}

func (m *SMTPMailer) SendPaymentBill(to, billURL, storeName, comment string, amount decimal.Decimal) error {
	subject := fmt.Sprintf("Payment to store %s", storeName)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Store <b>%s</b> requests a payment of <b>%s</b>.</p><p>%s</p><p><a href=%q>Pay the bill</a></p>",
		to, storeName, amount.String(), comment, billURL,
	)
	return m.send(to, subject, body)
}
