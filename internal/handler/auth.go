package handler

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/cache"
	"github.com/iliyamo/meeting-room-reservation/internal/config"
	"github.com/iliyamo/meeting-room-reservation/internal/mail"
	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
	"github.com/iliyamo/meeting-room-reservation/internal/utils"
)

// Captcha cache keys and lifetimes, matching the mail flows: a
// registration code lives five minutes, a password-reset code ten.
const (
	registerCaptchaPrefix = "captcha_"
	passwordCaptchaPrefix = "update_password_captcha_"
	registerCaptchaTTL    = 5 * time.Minute
	passwordCaptchaTTL    = 10 * time.Minute
)

// AuthHandler bundles dependencies for credential endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Cache cache.Store
	Mail  mail.Mailer
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, store cache.Store, mailer mail.Mailer) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Cache: store, Mail: mailer}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	NickName string `json:"nickName"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Captcha  string `json:"captcha"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updatePasswordReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Captcha  string `json:"captcha"`
}

type userInfoPart struct {
	ID          uint64             `json:"id"`
	Username    string             `json:"username"`
	NickName    string             `json:"nickName"`
	Email       string             `json:"email"`
	HeadPic     string             `json:"headPic"`
	Phone       string             `json:"phoneNumber"`
	IsAdmin     bool               `json:"isAdmin"`
	IsFrozen    bool               `json:"isFrozen"`
	CreatedAt   time.Time          `json:"createTime"`
	Roles       []string           `json:"roles"`
	Permissions []model.Permission `json:"permissions"`
}

type authResp struct {
	User    userInfoPart       `json:"userInfo"`
	Access  utils.AccessToken  `json:"access"`
	Refresh utils.RefreshToken `json:"refresh"`
}

func infoPart(u model.User) userInfoPart {
	roles, perms := utils.ResolveRoles(u.Roles)
	return userInfoPart{
		ID:          u.ID,
		Username:    u.Username,
		NickName:    u.NickName,
		Email:       u.Email,
		HeadPic:     u.HeadPic,
		Phone:       u.Phone,
		IsAdmin:     u.IsAdmin,
		IsFrozen:    u.IsFrozen,
		CreatedAt:   u.CreatedAt,
		Roles:       roles,
		Permissions: perms,
	}
}

// RegisterCaptcha mails a 6-digit code to the given address and
// caches it for five minutes under captcha_<address>.
func (h *AuthHandler) RegisterCaptcha(c echo.Context) error {
	return h.sendCaptcha(c, registerCaptchaPrefix, registerCaptchaTTL,
		"Registration captcha", "Your registration captcha is %s")
}

// UpdatePasswordCaptcha mails a password-reset code, cached for ten
// minutes under update_password_captcha_<address>.
func (h *AuthHandler) UpdatePasswordCaptcha(c echo.Context) error {
	return h.sendCaptcha(c, passwordCaptchaPrefix, passwordCaptchaTTL,
		"Password change captcha", "Your password change captcha is %s")
}

func (h *AuthHandler) sendCaptcha(c echo.Context, prefix string, ttl time.Duration, subject, bodyFmt string) error {
	address := strings.ToLower(strings.TrimSpace(c.QueryParam("address")))
	if address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "address required"})
	}

	code, err := captchaCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate captcha failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Cache.Set(ctx, prefix+address, code, ttl); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store captcha failed"})
	}
	if err := h.Mail.Send(ctx, mail.Message{
		To:      address,
		Subject: subject,
		HTML:    fmt.Sprintf("<p>"+bodyFmt+"</p>", code),
	}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send captcha failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "captcha sent"})
}

// Register validates the captcha for the email, creates the user
// and reports success. Tokens are not issued here; the client logs
// in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Password == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password/email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stored, err := h.Cache.Get(ctx, registerCaptchaPrefix+req.Email)
	if errors.Is(err, cache.ErrMiss) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "captcha expired"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "captcha lookup failed"})
	}
	if req.Captcha != stored {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "captcha incorrect"})
	}

	_, err = h.Users.Create(ctx, model.User{
		Username: req.Username,
		NickName: req.NickName,
		Email:    req.Email,
	}, req.Password, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrUsernameExists), errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "registered"})
}

// Login authenticates a normal user and returns the user info
// snapshot plus an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error { return h.login(c, false) }

// AdminLogin is Login restricted to users carrying the admin flag.
func (h *AuthHandler) AdminLogin(c echo.Context) error { return h.login(c, true) }

func (h *AuthHandler) login(c echo.Context, wantAdmin bool) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user does not exist"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.Password, req.Password) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password incorrect"})
	}
	// Frozen users keep their rows but may not authenticate. The
	// token service never checks this; it has to happen here.
	if u.IsFrozen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "account is frozen"})
	}
	if wantAdmin && !u.IsAdmin {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "not an administrator"})
	}

	u, err = h.Users.GetWithRoles(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	return h.tokenPair(c, u)
}

// Refresh exchanges a refresh token for a fresh pair. Roles and
// permissions are re-read from the store, so a permission change is
// picked up here rather than on outstanding access tokens.
func (h *AuthHandler) Refresh(c echo.Context) error { return h.refresh(c, false) }

// AdminRefresh is Refresh restricted to administrators.
func (h *AuthHandler) AdminRefresh(c echo.Context) error { return h.refresh(c, true) }

func (h *AuthHandler) refresh(c echo.Context, wantAdmin bool) error {
	raw := strings.TrimSpace(c.QueryParam("refreshToken"))
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
	}
	userID, err := utils.ParseRefreshToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token invalid, please log in again"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetWithRoles(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token invalid, please log in again"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	if u.IsFrozen {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is frozen"})
	}
	if wantAdmin && !u.IsAdmin {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not an administrator"})
	}
	return h.tokenPair(c, u)
}

// UpdatePassword resets a password after validating the mailed
// captcha. It is deliberately reachable without login so a locked
// out user can recover.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Password == "" || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password/email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stored, err := h.Cache.Get(ctx, passwordCaptchaPrefix+req.Email)
	if errors.Is(err, cache.ErrMiss) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "captcha expired"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "captcha lookup failed"})
	}
	if req.Captcha != stored {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "captcha incorrect"})
	}

	if err := h.Users.UpdatePassword(ctx, req.Username, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	// Used codes are single-shot.
	if err := h.Cache.Del(ctx, passwordCaptchaPrefix+req.Email); err != nil {
		log.Printf("auth: drop used captcha failed: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *AuthHandler) tokenPair(c echo.Context, u model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, u.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	return c.JSON(http.StatusOK, authResp{User: infoPart(u), Access: access, Refresh: refresh})
}

// captchaCode returns a 6-digit numeric code from crypto/rand.
func captchaCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
