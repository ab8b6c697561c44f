package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminRouter() *gin.Engine {
	r := gin.New()
	r.POST("/api/admin/login", Login)
	r.GET("/api/admin/stats", GetStats)
	return r
}

func adminRow(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "username", "password", "email"}).
		AddRow(1, "admin", string(hash), "atelier@example.fr")
}

func TestLoginIssuesToken(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM admins WHERE username").
		WithArgs("admin").
		WillReturnRows(adminRow(t, "s3cret"))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"username": "admin", "password": "s3cret"}`))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(adminRouter(), req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		Admin   struct {
			Username string `json:"username"`
		} `json:"admin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.Admin.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM admins WHERE username").
		WithArgs("admin").
		WillReturnRows(adminRow(t, "s3cret"))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"username": "admin", "password": "wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(adminRouter(), req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Identifiants incorrects")
}

func TestLoginUnknownUser(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM admins WHERE username").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "email"}))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"username": "ghost", "password": "whatever"}`))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(adminRouter(), req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginMissingCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login",
		strings.NewReader(`{"username": "admin"}`))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(adminRouter(), req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Identifiants manquants")
}

func TestCreateProductRejectsOversizedImage(t *testing.T) {
	withTestConfig(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "Bracelet en chêne"))
	require.NoError(t, writer.WriteField("price", "25.00"))
	require.NoError(t, writer.WriteField("category", "bracelets"))
	part, err := writer.CreateFormFile("images", "huge.png")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("x"), 5<<20+1))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := gin.New()
	r.POST("/api/admin/products", CreateProduct)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := performRequest(r, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "trop volumineuse")
}

func TestGetStats(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products$").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(14))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(9))
	mock.ExpectQuery("SELECT SUM\\(total_amount\\) FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(321.50))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products WHERE stock = 0").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	w := performRequest(adminRouter(), req)

	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.EqualValues(t, 14, stats["totalProducts"])
	assert.EqualValues(t, 321.50, stats["totalRevenue"])
	assert.EqualValues(t, 2, stats["outOfStock"])
}
