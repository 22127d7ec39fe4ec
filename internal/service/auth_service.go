package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fieldlane/fieldlane-auth/internal/domain"
	"github.com/fieldlane/fieldlane-auth/internal/jwt"
	"github.com/fieldlane/fieldlane-auth/internal/mailer"
	"github.com/fieldlane/fieldlane-auth/internal/otp"
	pw "github.com/fieldlane/fieldlane-auth/internal/password"
	"github.com/fieldlane/fieldlane-auth/internal/repository"
)

const confirmMailSubject = "Confirm Account"

// AuthService encapsulates the registration, login, and confirmation flows.
type AuthService struct {
	users     repository.UserRepository
	companies repository.CompanyRepository
	mail      mailer.Mailer
	snowflake *snowflake.Node
	jwt       *jwt.Generator
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, companies repository.CompanyRepository, mail mailer.Mailer, node *snowflake.Node, generator *jwt.Generator, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		companies: companies,
		mail:      mail,
		snowflake: node,
		jwt:       generator,
		logger:    logger,
		tracer:    otel.Tracer("github.com/fieldlane/fieldlane-auth/internal/service"),
	}
}

// Register creates a pending user from email/password credentials. The user
// is persisted only after the confirmation mail goes out; a failed dispatch
// leaves the store untouched.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (UserViewModel, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	fields := validateRegister(in)

	// The in-use check runs in the same pass as the field rules, so a bad
	// name and a taken email both land in one errors list.
	email := normalizeIdentifier(in.Email)
	if !hasFieldError(fields, "email") {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			fields = append(fields, FieldError{Field: "email", Message: "E-mail already in use"})
		} else if !errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return UserViewModel{}, fmt.Errorf("check existing user: %w", err)
		}
	}
	if len(fields) > 0 {
		return UserViewModel{}, newValidationError(fields)
	}

	hashed, err := pw.Hash(in.Password)
	if err != nil {
		span.RecordError(err)
		return UserViewModel{}, fmt.Errorf("hash password: %w", err)
	}

	code, err := otp.New()
	if err != nil {
		span.RecordError(err)
		return UserViewModel{}, fmt.Errorf("generate confirm otp: %w", err)
	}

	if err := s.mail.Send(ctx, email, confirmMailSubject, confirmMailBody(code)); err != nil {
		span.RecordError(err)
		return UserViewModel{}, fmt.Errorf("send confirm mail: %w", err)
	}

	user := domain.User{
		ID:           s.snowflake.Generate().Int64(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hashed,
		ConfirmOTP:   code,
		IsConfirmed:  false,
		Status:       domain.StatusDefault,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		span.RecordError(err)
		return UserViewModel{}, fmt.Errorf("create user: %w", err)
	}

	s.audit("register.success", "user_id", created.ID)
	return UserViewModel{
		ID:        created.ID,
		FirstName: created.FirstName,
		LastName:  created.LastName,
		Email:     created.Email,
	}, nil
}

// Login authenticates by phone and company join code. A known active user is
// issued a token directly; an unknown phone is provisioned under the company
// matched by uniqueID. No password is involved in this flow.
//
// Two concurrent logins for the same unmatched phone can both provision a
// user; the store carries no uniqueness constraint on phone and this flow
// adds no locking.
func (s *AuthService) Login(ctx context.Context, phone, uniqueID string) (LoginResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	if fields := validateLogin(phone, uniqueID); len(fields) > 0 {
		return LoginResult{}, newValidationError(fields)
	}

	phone = strings.TrimSpace(phone)
	uniqueID = strings.TrimSpace(uniqueID)

	user, err := s.users.GetByPhone(ctx, phone)
	if err == nil {
		if !user.Active() {
			return LoginResult{}, newUnauthorizedError("Account is not active. Please contact admin.")
		}
		result, err := s.issueSession(user, false)
		if err != nil {
			span.RecordError(err)
			return LoginResult{}, err
		}
		s.audit("login.success", "user_id", user.ID, "company_id", user.CompanyID)
		return result, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		return LoginResult{}, fmt.Errorf("lookup user by phone: %w", err)
	}

	company, err := s.companies.GetByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LoginResult{}, newFailureError("Company is not active. Please contact admin.")
		}
		span.RecordError(err)
		return LoginResult{}, fmt.Errorf("lookup company: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:        s.snowflake.Generate().Int64(),
		Phone:     phone,
		Status:    domain.StatusActive,
		CompanyID: company.ID,
	})
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, fmt.Errorf("provision user: %w", err)
	}

	result, err := s.issueSession(created, true)
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, err
	}
	s.audit("login.provisioned", "user_id", created.ID, "company_id", company.ID)
	return result, nil
}

// VerifyConfirm checks the mailed code and marks the account confirmed. The
// update is awaited before the success result is returned, so a store failure
// surfaces instead of leaving a silently unconfirmed row.
func (s *AuthService) VerifyConfirm(ctx context.Context, email, code string) error {
	ctx, span := s.startSpan(ctx, "AuthService.VerifyConfirm")
	defer span.End()

	fields := validateEmailField(email)
	if strings.TrimSpace(code) == "" {
		fields = append(fields, FieldError{Field: "otp", Message: "OTP must be specified."})
	}
	if len(fields) > 0 {
		return newValidationError(fields)
	}

	user, err := s.users.GetByEmail(ctx, normalizeIdentifier(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newUnauthorizedError("Specified email not found.")
		}
		span.RecordError(err)
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.IsConfirmed {
		return newUnauthorizedError("Account already confirmed.")
	}
	if subtle.ConstantTimeCompare([]byte(user.ConfirmOTP), []byte(strings.TrimSpace(code))) != 1 {
		return newUnauthorizedError("Otp does not match")
	}

	user.IsConfirmed = true
	user.ConfirmOTP = ""
	if err := s.users.Update(ctx, user); err != nil {
		span.RecordError(err)
		return fmt.Errorf("confirm user: %w", err)
	}

	s.audit("confirm.success", "user_id", user.ID)
	return nil
}

// ResendConfirmOtp rotates the confirmation code for a pending account. The
// rotation is persisted only in the success continuation of the mail send.
func (s *AuthService) ResendConfirmOtp(ctx context.Context, email string) error {
	ctx, span := s.startSpan(ctx, "AuthService.ResendConfirmOtp")
	defer span.End()

	if fields := validateEmailField(email); len(fields) > 0 {
		return newValidationError(fields)
	}

	user, err := s.users.GetByEmail(ctx, normalizeIdentifier(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return newUnauthorizedError("Specified email not found.")
		}
		span.RecordError(err)
		return fmt.Errorf("lookup user: %w", err)
	}

	if user.IsConfirmed {
		return newUnauthorizedError("Account already confirmed.")
	}

	code, err := otp.New()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("generate confirm otp: %w", err)
	}

	if err := s.mail.Send(ctx, user.Email, confirmMailSubject, confirmMailBody(code)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("send confirm mail: %w", err)
	}

	user.IsConfirmed = false
	user.ConfirmOTP = code
	if err := s.users.Update(ctx, user); err != nil {
		span.RecordError(err)
		return fmt.Errorf("rotate confirm otp: %w", err)
	}

	s.audit("confirm.resent", "user_id", user.ID)
	return nil
}

// GetUser loads the public profile for an authenticated user.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (UserViewModel, error) {
	ctx, span := s.startSpan(ctx, "AuthService.GetUser")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserViewModel{}, newUnauthorizedError("Account not found.")
		}
		span.RecordError(err)
		return UserViewModel{}, fmt.Errorf("load user: %w", err)
	}

	return UserViewModel{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}, nil
}

func (s *AuthService) issueSession(user domain.User, provisioned bool) (LoginResult, error) {
	token, err := s.jwt.GenerateSessionToken(user)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate session token: %w", err)
	}
	return LoginResult{
		UserID:      user.ID,
		CompanyID:   user.CompanyID,
		Phone:       user.Phone,
		Token:       token,
		Provisioned: provisioned,
	}, nil
}

func confirmMailBody(code string) string {
	return "<p>Please Confirm your Account.</p><p>OTP: " + code + "</p>"
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	logger := s.log()
	if logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func normalizeIdentifier(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
