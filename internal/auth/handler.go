package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName はセッショントークンを運ぶクッキー名です。
const SessionCookieName = "ag_session"

// Handler は HTTP リクエストを Service 呼び出しへ変換し、JSON 応答を整形します。
type Handler struct {
	service         *Service
	secureCookie    bool
	permanentMaxAge int
}

// NewHandler は Handler を作成します。permanentLifetime は永続セッション用
// クッキーの Max-Age になります。
func NewHandler(service *Service, secureCookie bool, permanentLifetime time.Duration) *Handler {
	return &Handler{
		service:         service,
		secureCookie:    secureCookie,
		permanentMaxAge: int(permanentLifetime.Seconds()),
	}
}

type registerRequest struct {
	UserName        string `json:"user_name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CheckAuth は GET /check_auth のハンドラーです。
// セッションが無い場合も 200 で auth_status:false を返します。
func (h *Handler) CheckAuth(c *gin.Context) {
	token, _ := c.Cookie(SessionCookieName)

	identity, err := h.service.CheckAuth(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			h.clearSessionCookie(c)
			c.JSON(http.StatusOK, gin.H{
				"auth_status": false,
				"error":       "Session not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"auth_status": true,
		"user_id":     identity.UserID,
		"user_name":   identity.UserName,
	})
}

// CreateUser は POST /create_user のハンドラーです。
func (h *Handler) CreateUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	identity, err := h.service.Register(c.Request.Context(), req.UserName, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 登録セッションはブラウザーセッション限り
	h.setSessionCookie(c, identity.Token, false)
	c.JSON(http.StatusCreated, gin.H{
		"message":     "User created successfully",
		"user_id":     identity.UserID,
		"user_name":   identity.UserName,
		"auth_status": true,
	})
}

// Login は POST /login のハンドラーです。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	identity, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setSessionCookie(c, identity.Token, true)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Logged in successfully",
		"user_id":     identity.UserID,
		"user_name":   identity.UserName,
		"auth_status": true,
	})
}

// Logout は POST /logout のハンドラーです。常に 200 を返します。
func (h *Handler) Logout(c *gin.Context) {
	token, _ := c.Cookie(SessionCookieName)
	if err := h.service.Logout(c.Request.Context(), token); err != nil {
		// ストアの失敗でもクライアント側の状態は破棄させる
		log.Printf("logout: failed to destroy session: %v", err)
	}

	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
	case errors.Is(err, ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email or username already exists"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// setSessionCookie はセッショントークンをクッキーへ書き込みます。
// SameSite=None により、許可されたオリジンからのクロスオリジン送信を受け付けます。
func (h *Handler) setSessionCookie(c *gin.Context, token string, permanent bool) {
	maxAge := 0 // ブラウザーセッション限り
	if permanent {
		maxAge = h.permanentMaxAge
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteNoneMode,
	})
}
