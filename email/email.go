// Package email sends the boutique's transactional mail through Resend.
// Every send is best-effort: a missing API key or a provider failure is
// logged and swallowed, it never fails the operation that triggered it.
package email

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"boutique-service/models"

	"github.com/resend/resend-go/v2"
)

// Sender abstracts the provider call so tests can record sends.
type Sender interface {
	Send(ctx context.Context, req *resend.SendEmailRequest) (string, error)
}

type resendSender struct {
	client *resend.Client
}

func (s *resendSender) Send(ctx context.Context, req *resend.SendEmailRequest) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", err
	}
	return sent.Id, nil
}

type Service struct {
	sender       Sender
	from         string
	contactEmail string
	baseURL      string
}

// NewService builds a Resend-backed service. With an empty API key the
// service stays unconfigured and every send becomes a logged no-op.
func NewService(apiKey, from, contactEmail, baseURL string) *Service {
	var sender Sender
	if apiKey != "" {
		sender = &resendSender{client: resend.NewClient(apiKey)}
	}
	return &Service{sender: sender, from: from, contactEmail: contactEmail, baseURL: baseURL}
}

// NewServiceWithSender injects a custom sender. Used by tests.
func NewServiceWithSender(sender Sender, from, contactEmail, baseURL string) *Service {
	return &Service{sender: sender, from: from, contactEmail: contactEmail, baseURL: baseURL}
}

func (s *Service) configured() bool {
	return s.sender != nil && s.contactEmail != ""
}

// SendOrderNotification mails the merchant about a new order.
func (s *Service) SendOrderNotification(ctx context.Context, order *models.Order) {
	if !s.configured() {
		log.Println("Resend not configured, order notification skipped")
		return
	}

	body := fmt.Sprintf(`
		<h2>Commande #%d</h2>
		<p><strong>Date :</strong> %s</p>
		<h3>Informations client</h3>
		<p><strong>Nom :</strong> %s<br>
		<strong>Email :</strong> %s<br>
		<strong>Téléphone :</strong> %s<br>
		<strong>Adresse :</strong><br>%s</p>
		<h3>Articles commandés</h3>
		<ul>%s</ul>
		<p class="total">Total : %.2f€</p>
		<p><a href="%s/admin/dashboard">Voir dans l'admin</a></p>`,
		order.ID,
		order.CreatedAt.Format("02/01/2006 15:04"),
		order.CustomerName,
		order.CustomerEmail,
		orEmpty(order.CustomerPhone, "Non renseigné"),
		nl2br(orEmpty(order.CustomerAddress, "Non renseignée")),
		itemsHTML(order.Items),
		order.TotalAmount,
		s.baseURL,
	)

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.contactEmail},
		Subject: fmt.Sprintf("🪵 Nouvelle commande #%d - le p'tit bout de bois", order.ID),
		Html:    layout("🪵 Nouvelle commande reçue !", body),
	}
	if _, err := s.sender.Send(ctx, req); err != nil {
		log.Printf("Failed to send order notification for order %d: %v", order.ID, err)
		return
	}
	log.Printf("Order notification sent for order %d", order.ID)
}

// SendContactNotification mails the merchant about a new contact message.
func (s *Service) SendContactNotification(ctx context.Context, contact *models.Contact) {
	if !s.configured() {
		log.Println("Resend not configured, contact notification skipped")
		return
	}

	body := fmt.Sprintf(`
		<h3>Expéditeur</h3>
		<p><strong>Nom :</strong> %s<br>
		<strong>Email :</strong> <a href="mailto:%s">%s</a></p>
		<h3>Message</h3>
		<p>%s</p>
		<p><a href="%s/admin/dashboard">Voir dans l'admin</a></p>`,
		contact.Name, contact.Email, contact.Email, nl2br(contact.Message), s.baseURL,
	)

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.contactEmail},
		Subject: fmt.Sprintf("💬 Nouveau message de %s - le p'tit bout de bois", contact.Name),
		Html:    layout("💬 Nouveau message de contact", body),
	}
	if _, err := s.sender.Send(ctx, req); err != nil {
		log.Printf("Failed to send contact notification: %v", err)
		return
	}
	log.Println("Contact notification sent")
}

// SendCustomerOrderEmail mails the customer about an order status. No
// template exists for "delivered", so that status sends nothing.
func (s *Service) SendCustomerOrderEmail(ctx context.Context, order *models.Order, status string) {
	if s.sender == nil {
		log.Println("Resend not configured, customer email skipped")
		return
	}

	content, ok := statusEmailContent(status, order.ID)
	if !ok {
		log.Printf("No customer email template for status %q, nothing sent", status)
		return
	}

	body := fmt.Sprintf(`
		<p>Bonjour %s,</p>
		%s
		<h3>Récapitulatif de votre commande</h3>
		<ul>%s</ul>
		<p class="total">Total : %.2f€</p>
		<p><strong>Adresse de livraison :</strong><br>%s</p>`,
		order.CustomerName,
		content.Message,
		itemsHTML(order.Items),
		order.TotalAmount,
		nl2br(orEmpty(order.CustomerAddress, "Non renseignée")),
	)

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{order.CustomerEmail},
		Subject: content.Subject,
		Html:    layout(content.Emoji+" "+content.Title, body),
	}
	if _, err := s.sender.Send(ctx, req); err != nil {
		log.Printf("Failed to send customer email (%s) for order %d: %v", status, order.ID, err)
		return
	}
	log.Printf("Customer email sent (%s) for order %d", status, order.ID)
}

// SendThreadReply mails an admin reply to the customer, embedding the
// thread tag in the subject so inbound replies route back. Returns the
// provider's email id.
func (s *Service) SendThreadReply(ctx context.Context, thread *models.Thread, message string, attachments []*resend.Attachment) (string, error) {
	if s.sender == nil {
		return "", fmt.Errorf("resend not configured")
	}

	attachNote := ""
	if len(attachments) > 0 {
		names := make([]string, len(attachments))
		for i, a := range attachments {
			names[i] = a.Filename
		}
		attachNote = fmt.Sprintf(`<p>📎 <strong>Pièces jointes :</strong> %s</p>`, strings.Join(names, ", "))
	}

	body := fmt.Sprintf(`
		<p>Bonjour %s,</p>
		<p>%s</p>
		%s
		<p>Vous pouvez répondre directement à cet email.</p>`,
		thread.CustomerName, nl2br(message), attachNote,
	)

	req := &resend.SendEmailRequest{
		From:        s.from,
		To:          []string{thread.CustomerEmail},
		ReplyTo:     s.contactEmail,
		Subject:     fmt.Sprintf("Re: %s %s", thread.Subject, ThreadTag(thread.ID)),
		Html:        layout("🪵 Réponse du Ptit bout de bois", body),
		Attachments: attachments,
	}
	return s.sender.Send(ctx, req)
}

type statusContent struct {
	Emoji   string
	Title   string
	Subject string
	Message string
}

func statusEmailContent(status string, orderID int) (statusContent, bool) {
	switch status {
	case models.OrderStatusPending:
		return statusContent{
			Emoji:   "⏳",
			Title:   "Commande reçue",
			Subject: fmt.Sprintf("Commande #%d reçue - le p'tit bout de bois", orderID),
			Message: `<p>Merci pour votre commande ! Nous l'avons bien reçue et elle sera bientôt prise en charge.</p>
				<p>Vous recevrez un email dès que votre commande sera confirmée.</p>`,
		}, true
	case models.OrderStatusConfirmed:
		return statusContent{
			Emoji:   "✅",
			Title:   "Commande confirmée",
			Subject: fmt.Sprintf("Commande #%d confirmée - le p'tit bout de bois", orderID),
			Message: `<p>Bonne nouvelle ! Votre commande a été prise en charge et vos créations sont préparées avec soin.</p>
				<p>Vous recevrez un email dès que votre commande sera expédiée.</p>`,
		}, true
	case models.OrderStatusShipped:
		return statusContent{
			Emoji:   "📦",
			Title:   "Commande expédiée",
			Subject: fmt.Sprintf("Commande #%d expédiée - le p'tit bout de bois", orderID),
			Message: `<p>Votre commande a été expédiée ! Elle devrait arriver dans les prochains jours.</p>
				<p>Merci pour votre confiance et à bientôt ! 🪵</p>`,
		}, true
	default:
		return statusContent{}, false
	}
}

func itemsHTML(items []models.OrderItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "<li>%s x %d - %.2f€</li>", item.Name, item.Quantity, item.Price)
	}
	return b.String()
}

func layout(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: linear-gradient(135deg, #8b4513 0%%, #d2691e 100%%); color: white; padding: 20px; text-align: center; border-radius: 10px 10px 0 0; }
.content { background: #f9f9f9; padding: 20px; border-radius: 0 0 10px 10px; }
.total { font-size: 1.2em; font-weight: bold; color: #8b4513; }
.footer { text-align: center; margin-top: 20px; color: #666; font-size: 0.9em; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>%s</h1></div>
<div class="content">%s</div>
<div class="footer"><p><strong>le p'tit bout de bois</strong></p><p>Créations artisanales en bois 🌳</p></div>
</div>
</body>
</html>`, title, body)
}

func nl2br(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}

func orEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

// sendTimeout bounds provider calls fired outside a request context.
const sendTimeout = 10 * time.Second

// Background returns a context suitable for best-effort sends detached
// from the request lifecycle.
func Background() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), sendTimeout)
}
