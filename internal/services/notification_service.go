// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

type NotificationService struct {
	config *config.Config
}

func NewNotificationService(config *config.Config) *NotificationService {
	return &NotificationService{config: config}
}

var receiptTemplate = template.Must(template.New("purchase_receipt").Parse(`
<!DOCTYPE html>
<html>
<body>
	<h2>Thanks for your purchase!</h2>
	<p>Here is your receipt for <strong>{{.ProductName}}</strong>.</p>
	<table>
		<tr><td>Order</td><td>{{.OrderID}}</td></tr>
		<tr><td>Price paid</td><td>{{.PricePaid}}</td></tr>
	</table>
	<p>
		<a href="{{.DownloadURL}}">Download {{.ProductName}}</a>
	</p>
	<p>This link expires in {{.ExpiresInHours}} hours.</p>
	<p>Best regards,<br>{{.SenderName}}</p>
</body>
</html>`))

// SendPurchaseReceipt emails the customer their order confirmation with a
// download link built from the verification id.
func (s *NotificationService) SendPurchaseReceipt(product *models.Product, order *models.Order, verificationID uuid.UUID, recipient string) error {
	data := map[string]interface{}{
		"ProductName":    product.Name,
		"OrderID":        order.ID.String(),
		"PricePaid":      formatCents(order.PricePaidInCents, s.config.Stripe.Currency),
		"DownloadURL":    fmt.Sprintf("%s/downloads/%s", s.config.Frontend.BaseURL, verificationID),
		"ExpiresInHours": s.config.Download.TTLHours,
		"SenderName":     s.config.Email.SenderName,
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render receipt template: %w", err)
	}

	return s.sendEmail(recipient, "Order Confirmation", buf.String())
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email delivery skipped: SMTP not configured")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	from := fmt.Sprintf("%s <%s>", s.config.Email.SenderName, s.config.Email.SenderEmail)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.SenderEmail, []string{to}, msg)
}

func formatCents(cents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(cents)/100, currency)
}
