package common

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	inErrors "github.com/adiwardana/commerce/internal/errors"
	"github.com/adiwardana/commerce/internal/log"
)

type credential struct{}

func AttachCredentialToContext(c context.Context, token string) context.Context {
	return context.WithValue(c, credential{}, token)
}

// CredentialFromContext returns the opaque bearer credential the shopper
// presented. The core never interprets it beyond well-formedness; it is
// forwarded as-is to the order collaborator.
func CredentialFromContext(c context.Context) string {
	token, ok := c.Value(credential{}).(string)
	if !ok {
		return ""
	}
	return token
}

func CheckTokenWellFormed(c context.Context, token string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckTokenWellFormed").
		Logger()

	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		err = fmt.Errorf("failed parsing token with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return inErrors.ErrTokenInvalid
	}

	return nil
}
