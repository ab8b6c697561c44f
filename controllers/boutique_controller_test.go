package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boutiqueRouter() *gin.Engine {
	r := gin.New()
	r.GET("/api/boutique/images", GetBoutiqueImages)
	r.POST("/api/admin/boutique/images", AddBoutiqueImage)
	r.PUT("/api/admin/boutique/images/reorder", ReorderBoutiqueImages)
	return r
}

func imageUpload(t *testing.T, field, filename string) (*bytes.Buffer, string) {
	return imageUploadContent(t, field, filename, []byte("fake image bytes"))
}

func imageUploadContent(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestAddBoutiqueImageAppendsToGallery(t *testing.T) {
	mock := newMockDB(t)
	conf := withTestConfig(t)

	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(display_order\\), 0\\) FROM boutique_images").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(3))
	mock.ExpectExec("INSERT INTO boutique_images").
		WithArgs(sqlmock.AnyArg(), 4).
		WillReturnResult(sqlmock.NewResult(9, 1))

	body, contentType := imageUpload(t, "image", "atelier.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/admin/boutique/images", body)
	req.Header.Set("Content-Type", contentType)
	w := performRequest(boutiqueRouter(), req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID           int64  `json:"id"`
		ImagePath    string `json:"image_path"`
		DisplayOrder int    `json:"display_order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(9), resp.ID)
	assert.Equal(t, 4, resp.DisplayOrder)
	assert.True(t, strings.HasPrefix(resp.ImagePath, "/images/boutique/"))

	// the upload landed on disk under the stored name
	saved, err := os.ReadFile(filepath.Join(conf.BoutiqueImgDir, filepath.Base(resp.ImagePath)))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(saved))
}

func TestAddBoutiqueImageRejectsBadExtension(t *testing.T) {
	withTestConfig(t)

	body, contentType := imageUpload(t, "image", "script.sh")
	req := httptest.NewRequest(http.MethodPost, "/api/admin/boutique/images", body)
	req.Header.Set("Content-Type", contentType)
	w := performRequest(boutiqueRouter(), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddBoutiqueImageRejectsOversizedFile(t *testing.T) {
	withTestConfig(t)

	body, contentType := imageUploadContent(t, "image", "atelier.jpg", bytes.Repeat([]byte("x"), 5<<20+1))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/boutique/images", body)
	req.Header.Set("Content-Type", contentType)
	w := performRequest(boutiqueRouter(), req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "trop volumineuse")
}

func TestAddBoutiqueImageRequiresFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/admin/boutique/images", nil)
	w := performRequest(boutiqueRouter(), req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Image requise")
}

func TestReorderBoutiqueImagesSingleTransaction(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE boutique_images SET display_order").
		WithArgs(1, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE boutique_images SET display_order").
		WithArgs(2, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := `{"images": [
		{"id": 5, "display_order": 1},
		{"id": 3, "display_order": 2}
	]}`

	req := httptest.NewRequest(http.MethodPut, "/api/admin/boutique/images/reorder", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(boutiqueRouter(), req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReorderBoutiqueImagesRollsBackOnFailure(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE boutique_images SET display_order").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	body := `{"images": [{"id": 5, "display_order": 1}]}`

	req := httptest.NewRequest(http.MethodPut, "/api/admin/boutique/images/reorder", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(boutiqueRouter(), req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
