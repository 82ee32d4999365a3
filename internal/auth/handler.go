package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/fs-auth/internal/users"
)

const (
	// htmx がクライアント側でページ遷移するためのヘッダー
	redirectHeader = "HX-Redirect"

	passwordMismatchMessage = "Passwords not matched."
	passwordTooLongMessage  = "Password is too long."
	genericFailureMessage   = "Something wrong"
)

// Authenticator はハンドラーが利用する認証処理です。
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*Result, error)
	Signup(ctx context.Context, in SignupInput) (string, error)
}

// Handler はページと認証エンドポイントのハンドラーをまとめます。
type Handler struct {
	auth     Authenticator
	profiles ProfileResolver
	logger   *slog.Logger
}

// NewHandler は Handler を作成します。
func NewHandler(auth Authenticator, profiles ProfileResolver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		auth:     auth,
		profiles: profiles,
		logger:   logger,
	}
}

// RegisterRoutes はルートを登録します。
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", Identify(h.profiles, h.logger), h.Home)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/signup", h.SignupPage)
	r.POST("/signup", h.Signup)
}

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type signupRequest struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"passwordConfirm" json:"passwordConfirm"`
}

// Home は GET / のハンドラーです。
func (h *Handler) Home(c *gin.Context) {
	var user *users.Profile
	if profile, ok := CurrentUser(c); ok {
		user = profile
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "Home",
		"user":  user,
	})
}

// LoginPage は GET /login のハンドラーです。
func (h *Handler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Login",
	})
}

// SignupPage は GET /signup のハンドラーです。
func (h *Handler) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{
		"title": "Signup",
	})
}

// Login は POST /login のハンドラーです。
// 失敗理由（ユーザー不在/パスワード不一致）はログにのみ残し、クライアントには区別を返しません。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	ctx := c.Request.Context()
	result, err := h.auth.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.ErrorContext(ctx, "login failed", "error", err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			respondWithError(c, err)
			return
		}
		// ストアの生のエラーはログイン画面には出さない
		c.String(http.StatusInternalServerError, genericFailureMessage)
		return
	}

	if !result.Authenticated() {
		h.logger.InfoContext(ctx, "authentication rejected", "reason", result.Outcome.String())
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Header(redirectHeader, "/?"+result.User.Profile().Query().Encode())
	c.Status(http.StatusOK)
}

// Signup は POST /signup のハンドラーです。
func (h *Handler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	id, err := h.auth.Signup(ctx, SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		if isUserError(err) {
			h.logger.InfoContext(ctx, "signup rejected", "error", err)
		} else {
			h.logger.ErrorContext(ctx, "signup failed", "error", err)
		}
		respondWithError(c, err)
		return
	}

	h.logger.InfoContext(ctx, "user created", "userId", id)
	c.Header(redirectHeader, "/login")
	c.Status(http.StatusOK)
}

// isUserError は入力内容に起因するエラーかを返します。
func isUserError(err error) bool {
	return errors.Is(err, ErrPasswordMismatch) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrPasswordTooLong)
}

func respondWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrPasswordMismatch):
		c.String(http.StatusUnauthorized, passwordMismatchMessage)
	case errors.Is(err, ErrInvalidInput):
		c.String(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPasswordTooLong):
		c.String(http.StatusBadRequest, passwordTooLongMessage)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.String(http.StatusRequestTimeout, "request canceled")
	case errors.Is(err, ErrHashing), errors.Is(err, ErrHashFormat):
		c.String(http.StatusInternalServerError, genericFailureMessage)
	default:
		c.String(http.StatusInternalServerError, err.Error())
	}
}
