package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/spf13/viper"
)

const authTokenTTL = 24 * time.Hour

type AuthTokenWrapper struct {
	jwt.StandardClaims
	Secret string `json:"secret"`
}

// GenerateAuthToken signs the admin token with the configured server secret.
func GenerateAuthToken(wrapper *AuthTokenWrapper) (string, error) {
	if wrapper.ExpiresAt == 0 {
		wrapper.ExpiresAt = time.Now().Add(authTokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, wrapper)
	signed, err := token.SignedString([]byte(viper.GetString(constants.ViperSecretKey)))
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return signed, nil
}

func ParseAuthToken(raw string) (*AuthTokenWrapper, error) {
	wrapper := new(AuthTokenWrapper)
	token, err := jwt.ParseWithClaims(raw, wrapper, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(viper.GetString(constants.ViperSecretKey)), nil
	})
	if err != nil || !token.Valid {
		return nil, constants.ErrUnauthorized
	}

	return wrapper, nil
}
