package notifier

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"shop-service/internal/models"
	"shop-service/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

const charset = "UTF-8"

// SESAPI is the subset of the SES client EmailSender uses
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSender sends order emails through SES
type EmailSender struct {
	client   SESAPI
	sender   string
	shopName string
	logger   *zap.Logger
}

// NewEmailSender creates an SES backed sender
func NewEmailSender(client SESAPI, senderEmail, shopName string) (*EmailSender, error) {
	if senderEmail == "" {
		return nil, errors.New("sender email address is not configured")
	}
	return &EmailSender{
		client:   client,
		sender:   senderEmail,
		shopName: shopName,
		logger:   util.GetLogger(),
	}, nil
}

// SendOrderConfirmation emails the customer a summary of a new order
func (e *EmailSender) SendOrderConfirmation(ctx context.Context, event *models.OrderCreatedEvent) error {
	if event.CustomerEmail == "" {
		return errors.New("recipient email address is empty")
	}

	subject, bodyHTML, bodyText := e.orderConfirmation(event)

	input := &ses.SendEmailInput{
		Source: aws.String(e.sender),
		Destination: &types.Destination{
			ToAddresses: []string{event.CustomerEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Charset: aws.String(charset), Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Charset: aws.String(charset), Data: aws.String(bodyHTML)},
				Text: &types.Content{Charset: aws.String(charset), Data: aws.String(bodyText)},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email for order %d: %w", event.OrderID, err)
	}

	e.logger.Info("Order confirmation email sent",
		zap.Int64("order_id", event.OrderID),
		zap.String("recipient", event.CustomerEmail))
	return nil
}

func (e *EmailSender) orderConfirmation(event *models.OrderCreatedEvent) (subject, bodyHTML, bodyText string) {
	subject = fmt.Sprintf("%s - Pedido #%d confirmado", e.shopName, event.OrderID)
	total := strconv.FormatFloat(event.TotalAmount, 'f', 2, 64)

	var htmlItems, textItems strings.Builder
	for _, item := range event.Items {
		line := fmt.Sprintf("Producto %d x%d", item.ProductID, item.Quantity)
		if item.Size != "" {
			line += " talla " + item.Size
		}
		if item.Color != "" {
			line += " color " + item.Color
		}
		line += " - " + strconv.FormatFloat(item.UnitPrice, 'f', 2, 64)

		htmlItems.WriteString("<li>" + html.EscapeString(line) + "</li>")
		textItems.WriteString("- " + line + "\n")
	}

	bodyHTML = fmt.Sprintf(`<html>
<body>
<p>Hola %s,</p>
<p>Gracias por tu compra. Tu pedido #%d fue recibido.</p>
<ul>%s</ul>
<p><strong>Total:</strong> %s</p>
<p>Método de pago: %s</p>
<p>%s</p>
</body>
</html>`,
		html.EscapeString(event.CustomerName), event.OrderID, htmlItems.String(),
		total, html.EscapeString(event.PaymentMethod), html.EscapeString(e.shopName))

	bodyText = fmt.Sprintf("Hola %s,\n\nGracias por tu compra. Tu pedido #%d fue recibido.\n\n%s\nTotal: %s\nMétodo de pago: %s\n\n%s\n",
		event.CustomerName, event.OrderID, textItems.String(), total, event.PaymentMethod, e.shopName)

	return subject, bodyHTML, bodyText
}
