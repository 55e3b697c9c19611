package handlers

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"khamboran/internal/content"
	"khamboran/internal/security"
	"khamboran/internal/validation"
)

// AuthHandler handles teacher dashboard sign-in, by passcode or Google.
type AuthHandler struct {
	tokens        *security.TokenIssuer
	csrf          *security.CSRF
	tokenDuration time.Duration
	oauthConfig   *oauth2.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(tokens *security.TokenIssuer, csrf *security.CSRF, tokenDuration time.Duration, oauthConfig *oauth2.Config) *AuthHandler {
	return &AuthHandler{
		tokens:        tokens,
		csrf:          csrf,
		tokenDuration: tokenDuration,
		oauthConfig:   oauthConfig,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Passcode string `json:"passcode"`
}

// Login checks the email and passcode against the static teacher table and
// sets the dashboard cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	teacher, ok := content.FindTeacher(req.Email)
	if !ok || !security.VerifyPasscode(req.Passcode, teacher.PasscodeHash) {
		respondWithError(w, http.StatusUnauthorized, "อีเมลหรือรหัสผ่านไม่ถูกต้อง", "", nil)
		return
	}

	h.issueSession(w, r, teacher.Email, teacher.DisplayName)
}

// Logout clears the dashboard cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, DashboardCookieName))
	respondJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, email, name string) {
	email = strings.ToLower(email)
	token, err := h.tokens.Issue(email, name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "issue dashboard token", err)
		return
	}
	csrfToken, err := h.csrf.Token(email)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "mint csrf token", err)
		return
	}

	expires := time.Now().Add(h.tokenDuration)
	http.SetCookie(w, security.CreateSessionCookie(r, DashboardCookieName, token, expires))
	respondJSON(w, http.StatusOK, map[string]any{
		"email":     email,
		"name":      name,
		"csrfToken": csrfToken,
	})
}
