package handler

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fidelipark/loyalty-backend/internal/config"
	"github.com/fidelipark/loyalty-backend/internal/logger"
	"github.com/fidelipark/loyalty-backend/internal/middleware"
	"github.com/fidelipark/loyalty-backend/internal/model"
	"github.com/fidelipark/loyalty-backend/internal/repository"
	"github.com/fidelipark/loyalty-backend/internal/utils"
)

// Store interfaces consumed by the auth handler.  The concrete SQL and
// Redis repositories satisfy them; tests plug in fakes.

// ClientStore is the customer-account surface the auth flows need.
type ClientStore interface {
	Create(ctx context.Context, nom, prenom, email, password, nbTel string, cost int) (model.Client, error)
	FindActiveByEmail(ctx context.Context, email string) (model.Client, error)
}

// MerchantStore is the merchant-account surface the auth flows need.
type MerchantStore interface {
	Create(ctx context.Context, nomMagasin, adresse, email, password, nbTel string, cost int) (model.Merchant, error)
	FindActiveByEmail(ctx context.Context, email string) (model.Merchant, error)
}

// AdminStore serves administrator logins.
type AdminStore interface {
	FindActiveByEmail(ctx context.Context, email string) (model.Admin, error)
}

// TokenRevoker records revoked tokens.  Revoke must be durable before it
// returns: a client that saw logout succeed must find its token dead on the
// next request.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthHandler bundles dependencies for the register / login / logout flows.
type AuthHandler struct {
	Cfg       config.Config
	Clients   ClientStore
	Merchants MerchantStore
	Admins    AdminStore
	Blacklist TokenRevoker
}

func NewAuthHandler(cfg config.Config, c ClientStore, m MerchantStore, a AdminStore, b TokenRevoker) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Clients: c, Merchants: m, Admins: a, Blacklist: b}
}

// ----- DTOs -----

type registerClientReq struct {
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Email    string `json:"email"`
	Password string `json:"password"`
	NbTel    string `json:"nb_tel"`
}

type registerMerchantReq struct {
	NomMagasin string `json:"nom_magasin"`
	Adresse    string `json:"adresse"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	NbTel      string `json:"nb_tel"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	UserType string `json:"userType"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type clientPart struct {
	ID       uint64 `json:"id"`
	Nom      string `json:"nom"`
	Prenom   string `json:"prenom"`
	Email    string `json:"email"`
	Points   uint64 `json:"points"`
	UserType string `json:"userType"`
}

type merchantPart struct {
	ID         uint64 `json:"id"`
	NomMagasin string `json:"nom_magasin"`
	Email      string `json:"email"`
	Adresse    string `json:"adresse"`
	UserType   string `json:"userType"`
}

type adminPart struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

// Login failures share one message so a caller cannot tell an unknown
// email, a disabled account and a wrong password apart.
const msgBadCredentials = "incorrect email or password"

const minPasswordLen = 6

func validEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}

func credentialFieldErrors(email, password string) []fieldError {
	var errs []fieldError
	if !validEmail(email) {
		errs = append(errs, fieldError{Field: "email", Message: "invalid email"})
	}
	if len(password) < minPasswordLen {
		errs = append(errs, fieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	return errs
}

// RegisterClient creates a customer account and returns a session token
// immediately, so registration doubles as a first login.
func (h *AuthHandler) RegisterClient(c echo.Context) error {
	var req registerClientReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	errs := credentialFieldErrors(req.Email, req.Password)
	if strings.TrimSpace(req.Nom) == "" {
		errs = append(errs, fieldError{Field: "nom", Message: "nom required"})
	}
	if strings.TrimSpace(req.Prenom) == "" {
		errs = append(errs, fieldError{Field: "prenom", Message: "prenom required"})
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cl, err := h.Clients.Create(ctx, strings.TrimSpace(req.Nom), strings.TrimSpace(req.Prenom),
		req.Email, req.Password, strings.TrimSpace(req.NbTel), h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "an account with this email already exists"})
		}
		logger.L().Error("client registration failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, cl.ID, model.RoleClient, cl.Email, h.Cfg.TokenTTLDays)
	if err != nil {
		logger.L().Error("token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"token":   tok.Token,
		"user": clientPart{
			ID: cl.ID, Nom: cl.Nom, Prenom: cl.Prenom,
			Email: cl.Email, Points: cl.Points, UserType: model.RoleClient,
		},
	})
}

// RegisterMerchant creates a merchant account and returns a session token.
func (h *AuthHandler) RegisterMerchant(c echo.Context) error {
	var req registerMerchantReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	errs := credentialFieldErrors(req.Email, req.Password)
	if strings.TrimSpace(req.NomMagasin) == "" {
		errs = append(errs, fieldError{Field: "nom_magasin", Message: "store name required"})
	}
	if strings.TrimSpace(req.Adresse) == "" {
		errs = append(errs, fieldError{Field: "adresse", Message: "address required"})
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Merchants.Create(ctx, strings.TrimSpace(req.NomMagasin), strings.TrimSpace(req.Adresse),
		req.Email, req.Password, strings.TrimSpace(req.NbTel), h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "an account with this email already exists"})
		}
		logger.L().Error("merchant registration failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, m.ID, model.RoleMerchant, m.Email, h.Cfg.TokenTTLDays)
	if err != nil {
		logger.L().Error("token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registration successful",
		"token":   tok.Token,
		"user": merchantPart{
			ID: m.ID, NomMagasin: m.NomMagasin,
			Email: m.Email, Adresse: m.Adresse, UserType: model.RoleMerchant,
		},
	})
}

// Login verifies credentials against the account table selected by
// userType (defaults to the client table) and issues a fresh token.  Every
// failure path that depends on the credentials returns the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	var errs []fieldError
	if !validEmail(req.Email) {
		errs = append(errs, fieldError{Field: "email", Message: "invalid email"})
	}
	if req.Password == "" {
		errs = append(errs, fieldError{Field: "password", Message: "password required"})
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		userID uint64
		role   string
		email  string
		hash   string
		user   interface{}
	)

	switch strings.ToUpper(strings.TrimSpace(req.UserType)) {
	case model.RoleMerchant:
		m, err := h.Merchants.FindActiveByEmail(ctx, req.Email)
		if err != nil {
			return h.loginLookupError(c, err)
		}
		userID, role, email, hash = m.ID, model.RoleMerchant, m.Email, m.PasswordHash
		user = merchantPart{ID: m.ID, NomMagasin: m.NomMagasin, Email: m.Email, Adresse: m.Adresse, UserType: model.RoleMerchant}
	case model.RoleAdmin:
		a, err := h.Admins.FindActiveByEmail(ctx, req.Email)
		if err != nil {
			return h.loginLookupError(c, err)
		}
		userID, role, email, hash = a.ID, model.RoleAdmin, a.Email, a.PasswordHash
		user = adminPart{ID: a.ID, Email: a.Email, UserType: model.RoleAdmin}
	default:
		cl, err := h.Clients.FindActiveByEmail(ctx, req.Email)
		if err != nil {
			return h.loginLookupError(c, err)
		}
		userID, role, email, hash = cl.ID, model.RoleClient, cl.Email, cl.PasswordHash
		user = clientPart{ID: cl.ID, Nom: cl.Nom, Prenom: cl.Prenom, Email: cl.Email, Points: cl.Points, UserType: model.RoleClient}
	}

	if !utils.VerifyPassword(hash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgBadCredentials})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, userID, role, email, h.Cfg.TokenTTLDays)
	if err != nil {
		logger.L().Error("token issue failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "login successful",
		"token":   tok.Token,
		"user":    user,
	})
}

func (h *AuthHandler) loginLookupError(c echo.Context, err error) error {
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgBadCredentials})
	}
	logger.L().Error("login lookup failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
}

// LogoutClient revokes the bearer token of a customer session.
func (h *AuthHandler) LogoutClient(c echo.Context) error {
	return h.logout(c, model.RoleClient)
}

// LogoutMerchant revokes the bearer token of a merchant session.
func (h *AuthHandler) LogoutMerchant(c echo.Context) error {
	return h.logout(c, model.RoleMerchant)
}

// logout extracts and validates the bearer itself rather than relying on
// JWTAuth, because the contract distinguishes a missing token (400) from an
// unauthenticated protected request (401).  The blacklist entry lives
// exactly as long as the token would have: TTL = exp - now.
func (h *AuthHandler) logout(c echo.Context, wantRole string) error {
	auth := c.Request().Header.Get("Authorization")
	raw := strings.TrimPrefix(auth, "Bearer ")
	if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing token"})
	}

	claims, err := utils.ParseSessionToken(h.Cfg.JWTSecret, raw)
	if err != nil {
		// An expired or forged token holds no session worth revoking.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	if claims.Role != wantRole {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Blacklist.Revoke(ctx, raw, time.Until(claims.ExpiresAt.Time)); err != nil {
		// Failing loudly here is deliberate: the client still holds a valid
		// token and must not believe it was invalidated.
		logger.L().Error("token revocation failed", zap.Error(err), zap.Uint64("user_id", claims.UserID))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "logout successful"})
}

// Me echoes the verified identity attached by the JWT middleware.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  c.Get(middleware.CtxUserID),
		"userType": c.Get(middleware.CtxRole),
		"email":    c.Get(middleware.CtxEmail),
	})
}
