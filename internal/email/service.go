package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	auth     smtp.Auth
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service. Username may be empty for relays
// that accept unauthenticated mail.
func NewService(host, port, from, username, password string) *Service {
	s := &Service{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
	if username != "" {
		s.auth = smtp.PlainAuth("", username, password, host)
	}
	return s
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to string, msg OrderConfirmation) error {
	body, err := BuildOrderConfirmationBody(msg)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your order at %s (#%s)", msg.RestaurantName, ShortID(msg.OrderID))
	return s.send(to, subject, body)
}

// SendReservationReceived tells the guest their table request arrived.
func (s *Service) SendReservationReceived(to string, msg ReservationReceived) error {
	body, err := BuildReservationReceivedBody(msg)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("We received your reservation request at %s", msg.RestaurantName)
	return s.send(to, subject, body)
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, s.auth, s.from, []string{to}, []byte(msg))
}

// ShortID returns the first eight characters of an id for display.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
