package email

import (
	"html/template"
	"strings"
)

// OrderItem represents an item in an order for email purposes. Prices are
// preformatted.
type OrderItem struct {
	Name      string
	Options   []string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

// OrderConfirmation is the content of the order confirmation email.
type OrderConfirmation struct {
	OrderID        string
	RestaurantName string
	CustomerName   string
	Items          []OrderItem
	Total          string
	PickupTime     string
	TableNumber    string
}

// ReservationReceived is the content of the reservation acknowledgement.
type ReservationReceived struct {
	ReservationID  string
	RestaurantName string
	Name           string
	PartySize      int
	Time           string
}

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #667eea; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order, {{.CustomerName}}</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">{{.RestaurantName}} has received your order.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">{{.OrderID}}</p>
			{{- if .PickupTime}}
			<p style="margin: 10px 0 0 0;">Pickup at {{.PickupTime}}</p>
			{{- end}}
			{{- if .TableNumber}}
			<p style="margin: 10px 0 0 0;">Table {{.TableNumber}}</p>
			{{- end}}
		</div>

		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				{{- range .Items}}
				<tr>
					<td style="padding: 12px; border-bottom: 1px solid #eee;">{{.Name}}{{range .Options}}<br><small>{{.}}</small>{{end}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{.UnitPrice}}</td>
					<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">{{.Subtotal}}</td>
				</tr>
				{{- end}}
			</tbody>
		</table>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Total</span>
			<span style="font-size: 24px; font-weight: bold; color: #667eea; margin-left: 10px;">{{.Total}}</span>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			This email was sent automatically. Please contact the restaurant with any questions.
		</p>
	</div>
</body>
</html>`))

var reservationReceivedTmpl = template.Must(template.New("reservation").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Hello {{.Name}},</h1>
	<p>{{.RestaurantName}} has received your request for a table for {{.PartySize}} on {{.Time}}.</p>
	<p>The restaurant will confirm your reservation shortly. Your reference is <strong style="font-family: monospace;">{{.ReservationID}}</strong>.</p>
</body>
</html>`))

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(msg OrderConfirmation) (string, error) {
	var b strings.Builder
	if err := orderConfirmationTmpl.Execute(&b, msg); err != nil {
		return "", err
	}
	return b.String(), nil
}

// BuildReservationReceivedBody builds the HTML body for reservation emails
func BuildReservationReceivedBody(msg ReservationReceived) (string, error) {
	var b strings.Builder
	if err := reservationReceivedTmpl.Execute(&b, msg); err != nil {
		return "", err
	}
	return b.String(), nil
}
