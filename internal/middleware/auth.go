package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adiwardana/commerce/internal/common"
	inErrors "github.com/adiwardana/commerce/internal/errors"
	inHttp "github.com/adiwardana/commerce/internal/http"
	"github.com/adiwardana/commerce/internal/log"
)

// Auth passes the shopper's opaque bearer credential through to the
// request context. The credential is checked for well-formedness only;
// verifying it is the identity provider's concern, not this core's.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context()).With().Str(log.KeyTag, "middleware Auth").Logger()
		c := logger.WithContext(r.Context())

		authorization := r.Header.Get("Authorization")
		if authorization == "" {
			logger.Error().Err(inErrors.ErrEmptyAuth).Msg(inErrors.ErrEmptyAuth.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusUnauthorized,
				"message":    inErrors.ErrEmptyAuth.Error(),
			})
			return
		}

		token := strings.TrimPrefix(strings.TrimPrefix(authorization, "Bearer "), "bearer ")
		err := common.CheckTokenWellFormed(c, token)
		if err != nil {
			logger.Error().Err(err).Msg(err.Error())
			inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
				"status":     "failed",
				"statusCode": http.StatusUnauthorized,
				"message":    inErrors.ErrTokenInvalid.Error(),
			})
			return
		}

		c = common.AttachCredentialToContext(c, token)
		next.ServeHTTP(w, r.WithContext(c))
	})
}
