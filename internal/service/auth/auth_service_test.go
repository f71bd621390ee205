package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/utils"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAdmin(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "s3cr3t")
	t.Cleanup(func() { viper.Set(constants.ViperSecretKey, "") })

	svc := NewService()

	_, err := svc.LoginAdmin(context.Background(), "wrong")
	assert.True(t, errors.Is(err, constants.ErrUnauthorized))

	token, err := svc.LoginAdmin(context.Background(), "s3cr3t")
	require.NoError(t, err)

	parsed, err := utils.ParseAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", parsed.Secret)
	assert.NotZero(t, parsed.ExpiresAt)
}

func TestLoginAdmin_EmptySecretDisabled(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "")

	_, err := NewService().LoginAdmin(context.Background(), "")
	assert.True(t, errors.Is(err, constants.ErrUnauthorized))
}
