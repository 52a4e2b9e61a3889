package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutritrack/nutritrack-server/internal/repository"
	"github.com/nutritrack/nutritrack-server/internal/storage"
)

func newPhotoEnv(t *testing.T, uid uint64) (*echo.Echo, sqlmock.Sqlmock, *storage.LocalStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := storage.NewLocalStore(t.TempDir(), 1<<20)
	h := NewPhotoHandler(repository.NewPhotoRepo(db), store, false)
	e := echo.New()
	g := e.Group("/api", asUser(uid))
	g.POST("/photos", h.Upload)
	g.GET("/photos", h.List)
	g.DELETE("/photos/:id", h.Delete)
	e.GET("/api/photos/:filename", h.Serve, asUser(uid))
	return e, mock, store
}

// multipartPhoto builds a multipart body with a "photo" part carrying the
// given content type, plus any extra plain form fields.
func multipartPhoto(t *testing.T, filename, contentType string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadNoFile(t *testing.T) {
	e, _, _ := newPhotoEnv(t, 9)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("calories", "250"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no file uploaded")
}

func TestUploadRejectsNonImage(t *testing.T) {
	e, _, _ := newPhotoEnv(t, 9)

	body, ctype := multipartPhoto(t, "notes.txt", "text/plain", []byte("not a picture"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only image files are allowed")
}

func TestUploadRejectsBadCalories(t *testing.T) {
	e, _, _ := newPhotoEnv(t, 9)

	for _, raw := range []string{"abc", "0", "-3"} {
		body, ctype := multipartPhoto(t, "lunch.jpg", "image/jpeg", []byte("jpegdata"), map[string]string{"calories": raw})
		req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
		req.Header.Set(echo.HeaderContentType, ctype)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "calories=%s", raw)
	}
}

func TestUploadSuccessGeneratesName(t *testing.T) {
	e, mock, store := newPhotoEnv(t, 9)

	mock.ExpectExec("INSERT INTO photos").
		WithArgs(uint64(9), sqlmock.AnyArg(), "lunch.JPG", sqlmock.AnyArg(), 420).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM photos WHERE id = ?")).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	body, ctype := multipartPhoto(t, "lunch.JPG", "image/jpeg", []byte("jpegdata"), map[string]string{"calories": "420"})
	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set(echo.HeaderContentType, ctype)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Photo struct {
			ID           uint64 `json:"id"`
			Filename     string `json:"filename"`
			OriginalName string `json:"original_name"`
			Calories     *int   `json:"calories"`
		} `json:"photo"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(11), resp.Photo.ID)
	assert.NotEqual(t, "lunch.JPG", resp.Photo.Filename)
	assert.Regexp(t, `^[0-9a-f]{32}\.jpg$`, resp.Photo.Filename)
	assert.Equal(t, "lunch.JPG", resp.Photo.OriginalName)
	require.NotNil(t, resp.Photo.Calories)
	assert.Equal(t, 420, *resp.Photo.Calories)

	assert.True(t, store.Exists(resp.Photo.Filename))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func photoRows(id, uid uint64, filename string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "filename", "original_name", "date", "calories", "created_at"}).
		AddRow(id, uid, filename, "lunch.jpg", "2025-04-01", nil, time.Now())
}

func TestServePhoto(t *testing.T) {
	e, mock, store := newPhotoEnv(t, 9)

	name, err := store.Save(bytes.NewReader([]byte("jpegdata")), "lunch.jpg", "image/jpeg", 8)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM photos WHERE filename = \? AND user_id = \?`).
		WithArgs(name, uint64(9)).
		WillReturnRows(photoRows(11, 9, name))

	req := httptest.NewRequest(http.MethodGet, "/api/photos/"+name, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpegdata", rec.Body.String())
}

func TestServePhotoNotOwned(t *testing.T) {
	e, mock, _ := newPhotoEnv(t, 9)

	// The filename exists but belongs to someone else, so the scoped
	// lookup comes back empty.
	mock.ExpectQuery(`FROM photos WHERE filename = \? AND user_id = \?`).
		WithArgs("deadbeef.jpg", uint64(9)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/photos/deadbeef.jpg", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "photo not found")
}

func TestServePhotoFileMissing(t *testing.T) {
	e, mock, _ := newPhotoEnv(t, 9)

	mock.ExpectQuery(`FROM photos WHERE filename = \? AND user_id = \?`).
		WithArgs("cafebabe.jpg", uint64(9)).
		WillReturnRows(photoRows(11, 9, "cafebabe.jpg"))

	req := httptest.NewRequest(http.MethodGet, "/api/photos/cafebabe.jpg", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "file not found")
}

func TestDeletePhoto(t *testing.T) {
	e, mock, store := newPhotoEnv(t, 9)

	name, err := store.Save(bytes.NewReader([]byte("jpegdata")), "lunch.jpg", "image/jpeg", 8)
	require.NoError(t, err)

	mock.ExpectQuery(`FROM photos WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(11), uint64(9)).
		WillReturnRows(photoRows(11, 9, name))
	mock.ExpectExec("DELETE FROM photos").
		WithArgs(uint64(11), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/photos/11", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, store.Exists(name))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePhotoNotOwned(t *testing.T) {
	e, mock, _ := newPhotoEnv(t, 9)

	mock.ExpectQuery(`FROM photos WHERE id = \? AND user_id = \?`).
		WithArgs(uint64(11), uint64(9)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodDelete, "/api/photos/11", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
