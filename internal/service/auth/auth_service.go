package auth

import (
	"context"
	"crypto/subtle"

	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
	"github.com/ougirez/nightlights/internal/pkg/utils"
	"github.com/spf13/viper"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// LoginAdmin exchanges the shared server secret for a signed admin token.
func (svc *Service) LoginAdmin(ctx context.Context, secret string) (string, error) {
	expected := viper.GetString(constants.ViperSecretKey)
	if expected == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) != 1 {
		logger.Warn(ctx, "admin login rejected")
		return "", constants.ErrUnauthorized
	}

	return utils.GenerateAuthToken(&utils.AuthTokenWrapper{Secret: secret})
}
