package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fieldlane/fieldlane-auth/internal/http/middleware"
	"github.com/fieldlane/fieldlane-auth/internal/http/response"
	"github.com/fieldlane/fieldlane-auth/internal/service"
)

// AuthHandler exposes the registration, login, and confirmation endpoints.
type AuthHandler struct {
	Auth   *service.AuthService
	Logger *zap.Logger
}

// NewAuthHandler creates the handler set.
func NewAuthHandler(auth *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger}
}

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Register creates a pending account and mails a confirmation code.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = registerRequest{}
	}

	view, err := h.Auth.Register(c.Request.Context(), service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		h.logFlowError(c, "register", err)
		response.FromError(c, err)
		return
	}
	response.SuccessWithData(c, "Registration Success.", view)
}

type loginRequest struct {
	Phone    string `json:"phone"`
	UniqueID string `json:"unique_id"`
}

// Login authenticates by phone and company join code.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = loginRequest{}
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Phone, req.UniqueID)
	if err != nil {
		h.logFlowError(c, "login", err)
		response.FromError(c, err)
		return
	}

	// A first login under a company join code creates the account.
	message := "Login Success."
	if result.Provisioned {
		message = "Registration Success."
	}
	response.SuccessWithData(c, message, result)
}

type verifyConfirmRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyConfirm checks the mailed code and activates confirmation.
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req verifyConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = verifyConfirmRequest{}
	}

	if err := h.Auth.VerifyConfirm(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.logFlowError(c, "verify_confirm", err)
		response.FromError(c, err)
		return
	}
	response.Success(c, "Account confirmed success.")
}

type resendConfirmRequest struct {
	Email string `json:"email"`
}

// ResendConfirmOtp mails a fresh confirmation code.
func (h *AuthHandler) ResendConfirmOtp(c *gin.Context) {
	var req resendConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = resendConfirmRequest{}
	}

	if err := h.Auth.ResendConfirmOtp(c.Request.Context(), req.Email); err != nil {
		h.logFlowError(c, "resend_confirm_otp", err)
		response.FromError(c, err)
		return
	}
	response.Success(c, "Confirm otp sent.")
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetSessionClaims(c)
	if !ok {
		response.Unauthorized(c, "Invalid access token.")
		return
	}

	view, err := h.Auth.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logFlowError(c, "me", err)
		response.FromError(c, err)
		return
	}
	response.SuccessWithData(c, "Operation success.", view)
}

func (h *AuthHandler) logFlowError(c *gin.Context, flow string, err error) {
	logger := h.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger.Warn("auth flow rejected",
		zap.String("flow", flow),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
}
