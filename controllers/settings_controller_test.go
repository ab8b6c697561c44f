package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsRouter() *gin.Engine {
	r := gin.New()
	r.GET("/api/settings", GetSettings)
	r.PUT("/api/admin/settings/:key", UpdateSetting)
	r.POST("/api/admin/settings/categories", CreateCategory)
	r.DELETE("/api/admin/settings/categories/:id", DeleteCategory)
	r.DELETE("/api/admin/settings/wood-types/:id", DeleteWoodType)
	return r
}

func TestGetSettingsReturnsKeyValueMap(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM settings").
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
			AddRow("free_shipping_threshold", "50").
			AddRow("shop_name", "le p'tit bout de bois"))

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := performRequest(settingsRouter(), req)

	require.Equal(t, http.StatusOK, w.Code)

	var settings map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, "50", settings["free_shipping_threshold"])
	assert.Equal(t, "le p'tit bout de bois", settings["shop_name"])
}

func TestUpdateSettingUpserts(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO settings").
		WithArgs("shop_name", "Atelier bois", "Atelier bois").
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := httptest.NewRequest(http.MethodPut, "/api/admin/settings/shop_name",
		strings.NewReader(`{"value": "Atelier bois"}`))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(settingsRouter(), req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs("Bracelets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/settings/categories",
		strings.NewReader(`{"name": "Bracelets"}`))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(settingsRouter(), req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "existe déjà")
}

func TestDeleteCategoryBlockedByProducts(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/settings/categories/3", nil)
	w := performRequest(settingsRouter(), req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "4 produit(s) utilisent cette catégorie")
}

func TestDeleteCategoryUnused(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM categories").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/settings/categories/3", nil)
	w := performRequest(settingsRouter(), req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteWoodTypeNotFound(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("DELETE FROM wood_types").
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/settings/wood-types/99", nil)
	w := performRequest(settingsRouter(), req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
