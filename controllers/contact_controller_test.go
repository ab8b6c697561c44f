package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/contact", SubmitContact)
	return r
}

func TestSubmitContactSeedsThread(t *testing.T) {
	mock := newMockDB(t)
	sender := withRecordingEmail(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs("Jean Martin", "jean@example.fr", "Bonjour, faites-vous des gravures ?").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("INSERT INTO message_threads").
		WithArgs(int64(12), "Question gravure", "Jean Martin", "jean@example.fr").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO thread_messages").
		WithArgs(int64(5), "Jean Martin", "jean@example.fr", "Bonjour, faites-vous des gravures ?").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body := `{
		"name": "Jean Martin",
		"email": "jean@example.fr",
		"subject": "Question gravure",
		"message": "Bonjour, faites-vous des gravures ?"
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(contactRouter(), req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success   bool  `json:"success"`
		ContactID int64 `json:"contactId"`
		ThreadID  int64 `json:"threadId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(12), resp.ContactID)
	assert.Equal(t, int64(5), resp.ThreadID)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "Jean Martin")
}

func TestSubmitContactDefaultSubject(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO message_threads").
		WithArgs(int64(1), "Message de Jean Martin", "Jean Martin", "jean@example.fr").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO thread_messages").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	body := `{"name": "Jean Martin", "email": "jean@example.fr", "message": "Bonjour"}`

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(contactRouter(), req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitContactRejectsMissingFields(t *testing.T) {
	for _, body := range []string{
		`{"email": "jean@example.fr", "message": "Bonjour"}`,
		`{"name": "Jean", "email": "pas-un-email", "message": "Bonjour"}`,
		`{"name": "Jean", "email": "jean@example.fr"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := performRequest(contactRouter(), req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}

func TestSubmitContactRollsBackOnThreadFailure(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO message_threads").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	body := `{"name": "Jean Martin", "email": "jean@example.fr", "message": "Bonjour"}`

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(contactRouter(), req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
