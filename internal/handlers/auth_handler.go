package handlers

import (
	"log"
	"net/http"
	"time"

	mW "github.com/ruralpay/invoices/internal/middleware"
	"github.com/ruralpay/invoices/internal/services"
)

type AuthHandler struct {
	auth         *services.AuthService
	loginPath    string
	secureCookie bool
}

func NewAuthHandler(auth *services.AuthService, loginPath string, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: auth, loginPath: loginPath, secureCookie: secureCookie}
}

// Login signs in with email and password and sets the session cookie
// @Summary Login
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Success 303
// @Failure 401 {object} services.ActionState
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		services.SendErrorResponse(w, "Invalid form body", http.StatusBadRequest, nil)
		return
	}

	result, session := h.auth.Authenticate(r.Context(), services.ActionState{}, r.PostForm)
	if session != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     mW.SessionCookie,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	writeResult(w, r, result)
}

// Logout revokes the current session token
// @Summary Logout
// @Tags Auth
// @Success 303
// @Router /logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := mW.TokenFromRequest(r)
	if err := h.auth.Logout(r.Context(), token); err != nil {
		log.Printf("[AUTH] Logout failed: %v", err)
		services.SendErrorResponse(w, "Failed to logout", http.StatusInternalServerError, nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mW.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.loginPath, http.StatusSeeOther)
}
