package portal

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"tenantportal/internal/access"
	"tenantportal/internal/confirm"
	"tenantportal/pkg/tenants"
)

const (
	msgLinkSent      = "If your email is registered, you will receive a confirmation link shortly."
	msgInvalidEmail  = "Please enter a valid email address."
	msgInvalidToken  = "Invalid or expired token."
	msgLoggedOut     = "You have been logged out due to inactivity."
	msgInvalidLogout = "Invalid logout request."
)

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Get("auto_logout") == "1" {
		msg = msgLoggedOut
	}
	render(w, http.StatusOK, page{Title: "Log in", Message: msg, LoginForm: true})
}

func (h *Handler) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, http.StatusBadRequest, page{Title: "Log in", Message: msgInvalidEmail, LoginForm: true})
		return
	}
	email := r.PostForm.Get("email")
	if err := h.flow.Request(r.Context(), email); err != nil {
		if errors.Is(err, tenants.ErrInvalidEmailFormat) {
			render(w, http.StatusBadRequest, page{Title: "Log in", Message: msgInvalidEmail, LoginForm: true, Email: email})
			return
		}
		h.log.Errorw("confirmation request failed", "err", err)
	}
	render(w, http.StatusOK, page{Title: "Log in", Message: msgLinkSent})
}

// redeem consumes a confirmation token. Every failure renders the same inline message.
func (h *Handler) redeem(w http.ResponseWriter, r *http.Request, tok string) {
	res, err := h.flow.Redeem(r.Context(), tok)
	if err != nil {
		if !errors.Is(err, confirm.ErrInvalidOrExpiredToken) && !errors.Is(err, confirm.ErrTokenExpired) {
			h.log.Errorw("confirmation redeem failed", "err", err)
		}
		render(w, http.StatusOK, page{Title: "Log in", Message: msgInvalidToken, LoginForm: true})
		return
	}
	h.cookies.Set(w, r, res.Credential)
	http.Redirect(w, r, res.Redirect, http.StatusFound)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request, nonce string) {
	a := access.ActorFrom(r.Context())
	if !h.nonces.Verify(nonce, logoutAction, a.Email) {
		h.log.Infow("invalid logout request", "path", r.URL.Path)
		http.Error(w, msgInvalidLogout, http.StatusBadRequest)
		return
	}
	h.cookies.Clear(w, r)
	if a.Role == access.RoleMember && h.events != nil {
		h.events.Event(r.Context(), a.Email, "user_logged_out", map[string]any{
			"tenant_id":   a.TenantID,
			"tenant_name": a.TenantName,
			"timestamp":   time.Now().Unix(),
		})
	}
	http.Redirect(w, r, LoginPath, http.StatusFound)
}

// logoutURL is the link templates render for the current actor.
func (h *Handler) logoutURL(a access.Actor) string {
	v := url.Values{}
	v.Set(h.params.Logout, "1")
	v.Set(h.params.LogoutNonce, h.nonces.Create(logoutAction, a.Email))
	return "/?" + v.Encode()
}
