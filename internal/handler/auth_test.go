package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nutritrack/nutritrack-server/internal/config"
	"github.com/nutritrack/nutritrack-server/internal/repository"
	"github.com/nutritrack/nutritrack-server/internal/utils"
)

const testSecret = "handler-test-secret"

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      testSecret,
		AccessTTLHours: 24,
		BcryptCost:     bcrypt.MinCost,
	}
}

func newAuthEnv(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db))
	e := echo.New()
	e.POST("/api/register", h.Register)
	e.POST("/api/login", h.Login)
	return e, mock
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterMissingFields(t *testing.T) {
	e, _ := newAuthEnv(t)

	for _, body := range []string{
		`{}`,
		`{"email":"a@x.com","password":"Passw0rd!"}`,
		`{"email":"a@x.com","name":"Alice"}`,
		`{"password":"Passw0rd!","name":"Alice"}`,
	} {
		rec := postJSON(e, "/api/register", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	e, _ := newAuthEnv(t)

	rec := postJSON(e, "/api/register", `{"email":"a@x.com","password":"weakpass","name":"Alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password must contain")
}

func TestRegisterSuccessIssuesToken(t *testing.T) {
	e, mock := newAuthEnv(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice@x.com", sqlmock.AnyArg(), "Alice").
		WillReturnResult(sqlmock.NewResult(7, 1))

	rec := postJSON(e, "/api/register", `{"email":"alice@x.com","password":"Passw0rd!","name":"Alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(7), resp.User.ID)

	// The issued token must decode back to exactly this identity.
	claims, err := utils.ParseAccessToken(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "alice@x.com", claims.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e, mock := newAuthEnv(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	rec := postJSON(e, "/api/register", `{"email":"alice@x.com","password":"Passw0rd!","name":"Alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user already exists")
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	e, mock := newAuthEnv(t)

	// Unknown email.
	mock.ExpectQuery("SELECT id,email,password_hash,name,created_at FROM users WHERE email=").
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)
	recUnknown := postJSON(e, "/api/login", `{"email":"ghost@x.com","password":"Passw0rd!"}`)

	// Known email, wrong password.
	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "created_at"}).
		AddRow(7, "alice@x.com", string(hash), "Alice", time.Now())
	mock.ExpectQuery("SELECT id,email,password_hash,name,created_at FROM users WHERE email=").
		WithArgs("alice@x.com").
		WillReturnRows(rows)
	recWrong := postJSON(e, "/api/login", `{"email":"alice@x.com","password":"Passw0rd?"}`)

	// Both failures are indistinguishable to the client.
	assert.Equal(t, http.StatusUnauthorized, recUnknown.Code)
	assert.Equal(t, http.StatusUnauthorized, recWrong.Code)
	assert.JSONEq(t, recUnknown.Body.String(), recWrong.Body.String())
}

func TestLoginSuccess(t *testing.T) {
	e, mock := newAuthEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)
	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "created_at"}).
		AddRow(7, "alice@x.com", string(hash), "Alice", time.Now())
	mock.ExpectQuery("SELECT id,email,password_hash,name,created_at FROM users WHERE email=").
		WithArgs("alice@x.com").
		WillReturnRows(rows)

	rec := postJSON(e, "/api/login", `{"email":"alice@x.com","password":"Passw0rd!"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := utils.ParseAccessToken(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
}
