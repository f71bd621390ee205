package utils

import (
	"testing"
	"time"

	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthToken(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "k1")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	raw, err := GenerateAuthToken(&AuthTokenWrapper{Secret: "k1"})
	require.NoError(t, err)

	got, err := ParseAuthToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "k1", got.Secret)

	viper.Set(constants.ViperSecretKey, "rotated")
	_, err = ParseAuthToken(raw)
	assert.ErrorIs(t, err, constants.ErrUnauthorized)
}

func TestAuthToken_Expired(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "k1")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	w := &AuthTokenWrapper{Secret: "k1"}
	w.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	raw, err := GenerateAuthToken(w)
	require.NoError(t, err)

	_, err = ParseAuthToken(raw)
	assert.ErrorIs(t, err, constants.ErrUnauthorized)
}
