package email

import (
	"context"
	"testing"
	"time"

	"boutique-service/models"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (r *recordingSender) Send(_ context.Context, req *resend.SendEmailRequest) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, req)
	return "email-id-1", nil
}

func testOrder() *models.Order {
	return &models.Order{
		ID:            42,
		CustomerName:  "Claire Dupont",
		CustomerEmail: "claire@example.com",
		Items: []models.OrderItem{
			{ID: 1, Name: "Jeu de petits chevaux", Price: 20, Quantity: 1},
			{ID: 2, Name: "Dessous de verre", Price: 10, Quantity: 2},
		},
		Subtotal:     40,
		ShippingCost: 6.90,
		TotalAmount:  46.90,
		Status:       models.OrderStatusPending,
		CreatedAt:    time.Now(),
	}
}

func TestThreadTagRoundTrip(t *testing.T) {
	tag := ThreadTag(17)
	assert.Equal(t, "[#THREAD-17]", tag)

	id, ok := ParseThreadTag("Re: Question sur un bracelet [#THREAD-17]")
	require.True(t, ok)
	assert.Equal(t, 17, id)
}

func TestParseThreadTagMissing(t *testing.T) {
	for _, subject := range []string{
		"",
		"Question sur un bracelet",
		"[#THREAD-]",
		"[THREAD-5]",
		"[#thread-5]",
	} {
		_, ok := ParseThreadTag(subject)
		assert.False(t, ok, "subject %q should not parse", subject)
	}
}

func TestStatusEmailContent(t *testing.T) {
	for _, status := range []string{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusShipped,
	} {
		content, ok := statusEmailContent(status, 42)
		require.True(t, ok, "status %q should have a template", status)
		assert.Contains(t, content.Subject, "#42")
	}

	_, ok := statusEmailContent(models.OrderStatusDelivered, 42)
	assert.False(t, ok, "delivered has no template")

	_, ok = statusEmailContent("cancelled", 42)
	assert.False(t, ok)
}

func TestSendCustomerOrderEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewServiceWithSender(sender, "boutique@test.fr", "contact@test.fr", "http://localhost:8080")

	svc.SendCustomerOrderEmail(context.Background(), testOrder(), models.OrderStatusConfirmed)

	require.Len(t, sender.sent, 1)
	req := sender.sent[0]
	assert.Equal(t, []string{"claire@example.com"}, req.To)
	assert.Contains(t, req.Subject, "confirmée")
	assert.Contains(t, req.Html, "Jeu de petits chevaux")
	assert.Contains(t, req.Html, "46.90€")
}

func TestSendCustomerOrderEmailDeliveredSendsNothing(t *testing.T) {
	sender := &recordingSender{}
	svc := NewServiceWithSender(sender, "boutique@test.fr", "contact@test.fr", "http://localhost:8080")

	svc.SendCustomerOrderEmail(context.Background(), testOrder(), models.OrderStatusDelivered)

	assert.Empty(t, sender.sent)
}

func TestSendOrderNotificationUnconfigured(t *testing.T) {
	// No sender at all: the call must be a silent no-op, not a panic.
	svc := NewService("", "boutique@test.fr", "contact@test.fr", "http://localhost:8080")
	svc.SendOrderNotification(context.Background(), testOrder())
	svc.SendCustomerOrderEmail(context.Background(), testOrder(), models.OrderStatusPending)
}

func TestSendThreadReplySubjectCarriesTag(t *testing.T) {
	sender := &recordingSender{}
	svc := NewServiceWithSender(sender, "boutique@test.fr", "contact@test.fr", "http://localhost:8080")

	thread := &models.Thread{
		ID:            7,
		Subject:       "Question sur un bracelet",
		CustomerName:  "Claire",
		CustomerEmail: "claire@example.com",
	}
	id, err := svc.SendThreadReply(context.Background(), thread, "Bonjour,\nc'est possible !", nil)
	require.NoError(t, err)
	assert.Equal(t, "email-id-1", id)

	require.Len(t, sender.sent, 1)
	req := sender.sent[0]
	assert.Equal(t, "Re: Question sur un bracelet [#THREAD-7]", req.Subject)
	assert.Equal(t, "contact@test.fr", req.ReplyTo)
	assert.Contains(t, req.Html, "Bonjour,<br>c'est possible !")
}

func TestSendThreadReplyUnconfigured(t *testing.T) {
	svc := NewService("", "boutique@test.fr", "contact@test.fr", "http://localhost:8080")
	_, err := svc.SendThreadReply(context.Background(), &models.Thread{ID: 1}, "hi", nil)
	assert.Error(t, err)
}
