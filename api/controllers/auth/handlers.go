package auth

import (
	"net/http"

	"github.com/coopmercado/coopmercado-backend/api/middleware"
	"github.com/coopmercado/coopmercado-backend/api/responses"
	"github.com/coopmercado/coopmercado-backend/api/validators"
	internalauth "github.com/coopmercado/coopmercado-backend/internal/auth"
	"github.com/coopmercado/coopmercado-backend/internal/users"
	pkgerrors "github.com/coopmercado/coopmercado-backend/pkg/errors"
	"github.com/coopmercado/coopmercado-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for an access token.
func Login(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"access_token": result.AccessToken,
			"user":         users.ToDTO(result.User),
		})
	}
}

// Logout revokes the current session.
func Logout(svc internalauth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		jti := middleware.SessionIDFromContext(r.Context())
		if jti == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}

		if err := svc.Logout(r.Context(), jti); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
