package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/montybasquiart/sihiri-build/pkg/auth"
	"github.com/montybasquiart/sihiri-build/pkg/errors"
	"github.com/montybasquiart/sihiri-build/pkg/httputil"
)

const authRealm = "sihiri"

// userMeHandler verifies the wallet auth response carried as a bearer token
// and returns the profile it describes.
func (g *Gateway) userMeHandler(w http.ResponseWriter, r *http.Request) {
	token, err := httputil.BearerJWT(r, authRealm)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}

	data, err := auth.VerifyAuthResponse(token)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data.Profile())
}

func (g *Gateway) userByUsernameHandler(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if !httputil.ValidateUsername(username) {
		httputil.WriteErr(w, r, errors.NewValidationError("username", "must be lowercase letters, digits, '.', '_' or '-'"))
		return
	}

	principal, err := g.deps.Contracts.Identity().GetPrincipalByUsername(r.Context(), username)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"username":  username,
		"principal": principal,
		"available": principal == "",
	})
}

func (g *Gateway) userProfileHandler(w http.ResponseWriter, r *http.Request) {
	address, err := httputil.URLParamPrincipal(r, "address")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	profile, err := g.deps.Contracts.Identity().GetProfile(r.Context(), address)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	if profile == nil {
		httputil.WriteErr(w, r, errors.NewNotFoundError("profile", address))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (g *Gateway) userVerifiedHandler(w http.ResponseWriter, r *http.Request) {
	address, err := httputil.URLParamPrincipal(r, "address")
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	verified, err := g.deps.Contracts.Identity().IsVerified(r.Context(), address)
	if err != nil {
		httputil.WriteErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"address": address, "verified": verified})
}
