package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/alexarts74/trip-indo/pkg/config"
	"github.com/alexarts74/trip-indo/pkg/database"
	"github.com/alexarts74/trip-indo/pkg/middleware"
	"github.com/alexarts74/trip-indo/pkg/models"
	"github.com/alexarts74/trip-indo/pkg/utils"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	jwt    *utils.JWTService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, db database.DatabaseInterface) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		db:     db,
		jwt:    utils.NewJWTService(cfg.JWTSecret),
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.UserRegisterRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		utils.WriteValidationErrorResponse(w, "A valid email is required", "")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.WriteValidationErrorResponse(w, err.Error(), "")
		return
	}

	if _, err := h.db.GetUserByEmail(email); err == nil {
		utils.WriteConflictResponse(w, "An account with this email already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to process password")
		return
	}

	user := &models.User{Email: email, Password: hash}
	if err := h.db.CreateUser(user); err != nil {
		fmt.Printf("❌ Register: failed to create user: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Failed to create account")
		return
	}

	// profile 行与用户同ID
	profile := &models.Profile{
		ID:        user.ID,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	if err := h.db.CreateProfile(profile); err != nil {
		fmt.Printf("⚠️ Register: failed to create profile for %s: %v\n", user.ID, err)
	}

	// 注册即对账：把邀请时留下的email占位行绑到新用户
	reconciled := ReconcileParticipants(h.db, user.ID, user.Email)

	accessToken, refreshToken, expiresIn, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate tokens")
		return
	}

	fmt.Printf("✅ Register: new user %s (%s), %d participant rows reconciled\n", user.ID, user.Email, reconciled)

	utils.WriteCreatedResponse(w, models.UserLoginResponse{
		User:                   *user,
		AccessToken:            accessToken,
		RefreshToken:           refreshToken,
		ExpiresIn:              expiresIn,
		ReconciledParticipants: reconciled,
	})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.UserLoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	email := utils.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		utils.WriteBadRequestResponse(w, "Email and password are required")
		return
	}

	user, err := h.db.GetUserByEmail(email)
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		// 不区分"用户不存在"与"密码错误"
		utils.WriteUnauthorizedResponse(w, "Invalid email or password")
		return
	}

	// 每次登录都对账一遍，邀请可能发生在两次登录之间
	reconciled := ReconcileParticipants(h.db, user.ID, user.Email)

	accessToken, refreshToken, expiresIn, err := h.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to generate tokens")
		return
	}

	fmt.Printf("✅ Login: user %s (%s), %d participant rows reconciled\n", user.ID, user.Email, reconciled)

	utils.WriteSuccessResponse(w, models.UserLoginResponse{
		User:                   *user,
		AccessToken:            accessToken,
		RefreshToken:           refreshToken,
		ExpiresIn:              expiresIn,
		ReconciledParticipants: reconciled,
	})
}

// RefreshToken POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshTokenRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}
	if req.RefreshToken == "" {
		utils.WriteBadRequestResponse(w, "refresh_token is required")
		return
	}

	accessToken, expiresIn, err := h.jwt.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid refresh token")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"access_token": accessToken,
		"expires_in":   expiresIn,
	})
}

// Logout POST /api/auth/logout
// 无服务端会话，客户端丢弃token即可。保留端点以便前端统一调用。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.WriteMessageResponse(w, "Logged out", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.RequireUser(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	full, err := h.db.GetUserByID(user.ID)
	if err != nil {
		utils.WriteNotFoundResponse(w, "User not found")
		return
	}

	var profile *models.Profile
	if profiles, err := h.db.GetProfilesByIDs([]string{user.ID}); err == nil && len(profiles) > 0 {
		profile = &profiles[0]
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"user":    full,
		"profile": profile,
	})
}
