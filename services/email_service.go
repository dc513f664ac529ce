package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"prestamos/config"
	"prestamos/models"
	"prestamos/utils"
)

// Mailer sends loan notifications to clients
type Mailer interface {
	SendLoanClosedNotification(to string, client *models.Client, loan *models.Loan) error
}

// EmailService sends mail over SMTP. Without a host every send is a no-op.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService creates a new EmailService
func NewEmailService(cfg config.SMTPConfig) *EmailService {
	s := &EmailService{from: cfg.From}
	if cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

// Enabled reports whether an SMTP host is configured
func (s *EmailService) Enabled() bool {
	return s.dialer != nil
}

// SendEmail sends an HTML message
func (s *EmailService) SendEmail(to, subject, body string) error {
	if !s.Enabled() {
		utils.LogDebug("smtp disabled, dropping mail to %s: %s", to, subject)
		return nil
	}
	m := buildMessage(s.from, to, subject, body)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar correo: %w", err)
	}
	return nil
}

// SendLoanClosedNotification tells the client their loan was paid off
func (s *EmailService) SendLoanClosedNotification(to string, client *models.Client, loan *models.Loan) error {
	subject := "¡Felicitaciones! Su préstamo fue pagado"
	body := fmt.Sprintf(`
		<h2>¡Felicitaciones, %s!</h2>
		<p>Su préstamo por $%s fue cerrado exitosamente.</p>
		<p>Fecha: %s</p>
		<p>Gracias por confiar en nosotros.</p>
	`, client.FullName(), loan.MontoPrestado, time.Now().Format("02/01/2006 15:04"))

	return s.SendEmail(to, subject, body)
}

func buildMessage(from, to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return m
}
