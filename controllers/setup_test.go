package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"boutique-service/config"
	"boutique-service/database"
	"boutique-service/email"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/resend/resend-go/v2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newMockDB swaps the package-level connection for a sqlmock and restores
// it when the test ends.
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		_ = db.Close()

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet database expectations: %v", err)
		}
	})

	return mock
}

// recordingSender captures outgoing emails instead of hitting Resend.
type recordingSender struct {
	sent []*resend.SendEmailRequest
}

func (r *recordingSender) Send(_ context.Context, req *resend.SendEmailRequest) (string, error) {
	r.sent = append(r.sent, req)
	return "email_test_id", nil
}

// withRecordingEmail wires a recording email service into the package and
// restores the previous one afterwards.
func withRecordingEmail(t *testing.T) *recordingSender {
	t.Helper()

	sender := &recordingSender{}
	prev := emailService
	emailService = email.NewServiceWithSender(sender, "atelier@example.fr", "contact@example.fr", "https://example.fr")
	t.Cleanup(func() { emailService = prev })

	return sender
}

func withTestConfig(t *testing.T) *config.Config {
	t.Helper()

	prev := cfg
	c := &config.Config{
		AttachmentsDir: t.TempDir(),
		ProductImgDir:  t.TempDir(),
		BoutiqueImgDir: t.TempDir(),
	}
	cfg = c
	t.Cleanup(func() { cfg = prev })

	return c
}

func performRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
