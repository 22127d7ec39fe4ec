package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldlane/fieldlane-auth/internal/domain"
	"github.com/fieldlane/fieldlane-auth/internal/http/middleware"
	"github.com/fieldlane/fieldlane-auth/internal/jwt"
	"github.com/fieldlane/fieldlane-auth/internal/service"
)

type stubUserRepo struct {
	users     map[int64]domain.User
	createErr error
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByPhone(_ context.Context, phone string) (domain.User, error) {
	for _, u := range s.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return domain.User{}, pgx.ErrNoRows
}

func (s *stubUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if s.createErr != nil {
		return domain.User{}, s.createErr
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) Update(_ context.Context, user domain.User) error {
	s.users[user.ID] = user
	return nil
}

type stubCompanyRepo struct {
	companies map[string]domain.Company
}

func (s *stubCompanyRepo) GetByUniqueID(_ context.Context, uniqueID string) (domain.Company, error) {
	if c, ok := s.companies[uniqueID]; ok {
		return c, nil
	}
	return domain.Company{}, pgx.ErrNoRows
}

func (s *stubCompanyRepo) GetByID(_ context.Context, id int64) (domain.Company, error) {
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Company{}, pgx.ErrNoRows
}

func (s *stubCompanyRepo) Create(_ context.Context, company domain.Company) (domain.Company, error) {
	s.companies[company.UniqueID] = company
	return company, nil
}

type recordingMailer struct {
	sent int
}

func (r *recordingMailer) Send(context.Context, string, string, string) error {
	r.sent++
	return nil
}

type handlerFixture struct {
	engine *gin.Engine
	users  *stubUserRepo
	jwt    *jwt.Generator
	mail   *recordingMailer
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	users := &stubUserRepo{users: map[int64]domain.User{}}
	companies := &stubCompanyRepo{companies: map[string]domain.Company{
		"ACME1": {ID: 7, UniqueID: "ACME1", Name: "Acme", Status: domain.StatusActive},
	}}
	mail := &recordingMailer{}
	generator := jwt.NewGenerator([]byte("test-secret"), "fieldlane-auth", time.Hour)

	svc := service.NewAuthService(users, companies, mail, node, generator, zap.NewNop())
	h := NewAuthHandler(svc, zap.NewNop())
	authMW := &middleware.Auth{Tokens: generator}

	engine := gin.New()
	auth := engine.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/verify-confirm", h.VerifyConfirm)
	auth.POST("/resend-confirm-otp", h.ResendConfirmOtp)
	auth.GET("/me", authMW.ValidateJWT, h.Me)

	return &handlerFixture{engine: engine, users: users, jwt: generator, mail: mail}
}

func (f *handlerFixture) post(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/register", gin.H{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"password":  "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Equal(t, true, body["status"])
	require.Equal(t, "Registration Success.", body["message"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "jane@example.com", data["email"])
	require.Equal(t, 1, f.mail.sent)
}

func TestRegisterEndpointValidationEnvelope(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/register", gin.H{"email": "bad"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	require.Equal(t, false, body["status"])
	require.Equal(t, "Validation Error.", body["message"])

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, errs)
	first, ok := errs[0].(map[string]any)
	require.True(t, ok)
	require.Contains(t, first, "field")
	require.Contains(t, first, "message")
}

func TestRegisterEndpointStoreFailureHidesCause(t *testing.T) {
	f := newHandlerFixture(t)
	f.users.createErr = errors.New("pgx: FATAL: password authentication failed for user \"auth\" (host db.internal:5432)")

	rec := f.post(t, "/auth/register", gin.H{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"password":  "secret123",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	require.Equal(t, false, body["status"])
	require.Equal(t, "Internal Server Error.", body["message"])
	require.NotContains(t, rec.Body.String(), "pgx")
	require.NotContains(t, rec.Body.String(), "db.internal")
}

func TestLoginEndpointIssuesToken(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/login", gin.H{"phone": "5551234", "unique_id": "ACME1"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Equal(t, "Login Success.", body["message"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	token, ok := data["token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	_, claims, err := f.jwt.ValidateSessionToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.CompanyID)
}

func TestLoginEndpointProvisioningMessage(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/login", gin.H{"phone": "5559999", "unique_id": "ACME1"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	require.Equal(t, "Registration Success.", body["message"])

	rec = f.post(t, "/auth/login", gin.H{"phone": "5559999", "unique_id": "ACME1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Login Success.", decode(t, rec)["message"])
}

func TestLoginEndpointUnknownCompany(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/login", gin.H{"phone": "5551234", "unique_id": "NOPE"})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode(t, rec)
	require.Equal(t, false, body["status"])
	require.Equal(t, "Company is not active. Please contact admin.", body["message"])
}

func TestVerifyConfirmEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/register", gin.H{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"password":  "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := f.users.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)

	rec = f.post(t, "/auth/verify-confirm", gin.H{"email": "jane@example.com", "otp": stored.ConfirmOTP})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Account confirmed success.", decode(t, rec)["message"])

	rec = f.post(t, "/auth/verify-confirm", gin.H{"email": "jane@example.com", "otp": stored.ConfirmOTP})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Account already confirmed.", decode(t, rec)["message"])
}

func TestResendConfirmOtpEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.post(t, "/auth/resend-confirm-otp", gin.H{"email": "ghost@example.com"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Specified email not found.", decode(t, rec)["message"])
}

func TestMeEndpoint(t *testing.T) {
	f := newHandlerFixture(t)

	user, err := f.users.Create(context.Background(), domain.User{
		ID:     42,
		Email:  "jane@example.com",
		Phone:  "5551234",
		Status: domain.StatusActive,
	})
	require.NoError(t, err)

	token, err := f.jwt.GenerateSessionToken(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data, ok := decode(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "jane@example.com", data["email"])

	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec = httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
