package services

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"
	"sync"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/Rakhulsr/go-storefront/app/utils/format"
	"go.uber.org/zap"
)

// OrderNotifier is told about every order after it has been committed.
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order *models.Order)
}

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(context.Context, *models.Order) {}

// AsyncNotifier delivers notifications on background goroutines and keeps count of the ones
// still running so shutdown can wait for them.
type AsyncNotifier struct {
	next OrderNotifier
	wg   sync.WaitGroup
}

func NewAsyncNotifier(next OrderNotifier) *AsyncNotifier {
	if next == nil {
		next = noopNotifier{}
	}
	return &AsyncNotifier{next: next}
}

func (n *AsyncNotifier) OrderPlaced(ctx context.Context, order *models.Order) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.next.OrderPlaced(context.WithoutCancel(ctx), order)
	}()
}

// Wait blocks until every pending notification has finished or ctx is done.
func (n *AsyncNotifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	config configs.EmailConfig
	send   sendFunc
	logger *zap.Logger
}

// NewOrderNotifier returns a mailer when an SMTP host is configured and a no-op otherwise.
func NewOrderNotifier(cfg configs.EmailConfig, logger *zap.Logger) OrderNotifier {
	if cfg.Host == "" {
		return noopNotifier{}
	}
	return NewMailer(cfg, logger)
}

func NewMailer(cfg configs.EmailConfig, logger *zap.Logger) *Mailer {
	return &Mailer{
		config: cfg,
		send:   smtp.SendMail,
		logger: logger,
	}
}

func (m *Mailer) SendHTMLEmail(to, subject, htmlBody string) error {
	headers := [][2]string{
		{"From", m.config.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=\"UTF-8\""},
	}

	var msg strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", h[0], h[1])
	}
	msg.WriteString("\r\n" + htmlBody)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	if err := m.send(addr, auth, m.config.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// OrderPlaced mails the order summary to the customer. Failures are only logged.
func (m *Mailer) OrderPlaced(ctx context.Context, order *models.Order) {
	to := order.Customer.User.Email
	if to == "" {
		m.logger.Warn("Mailer.OrderPlaced: customer has no email", zap.Uint("order_id", order.ID))
		return
	}

	subject := fmt.Sprintf("Order %s received", order.Code)
	if err := m.SendHTMLEmail(to, subject, BuildOrderEmailBody(order)); err != nil {
		m.logger.Error("Mailer.OrderPlaced: failed to send confirmation", zap.Uint("order_id", order.ID), zap.Error(err))
		return
	}
	m.logger.Info("Mailer.OrderPlaced: confirmation sent", zap.Uint("order_id", order.ID))
}

func BuildOrderEmailBody(order *models.Order) string {
	var rows strings.Builder
	total := calc.CalculateGrandTotal()
	for _, item := range order.Items {
		sub := calc.CalculateSubTotal(item.Price, item.Quantity)
		total = total.Add(sub)
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(item.Product.Title), item.Quantity, format.Money(item.Price), format.Money(sub))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Order %[1]s</title></head>
<body>
<h2>Thank you for your order</h2>
<p>Your order <strong>%[1]s</strong> has been placed and is awaiting payment.</p>
<table>
<tr><th>Product</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
%[2]s
</table>
<p>Total: <strong>%[3]s</strong></p>
</body>
</html>`, html.EscapeString(order.Code), rows.String(), format.Money(total))
}
