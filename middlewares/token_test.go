package middlewares

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/utkarsh-pawar/farmers-manipal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{Id: primitive.NewObjectID(), Role: models.RoleBuyer}

	token, err := GenerateToken("test-secret", user, time.Hour)
	require.NoError(t, err)

	userId, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, user.Id.Hex(), userId)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	user := &models.User{Id: primitive.NewObjectID(), Role: models.RoleBuyer}

	token, err := GenerateToken("test-secret", user, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	user := &models.User{Id: primitive.NewObjectID(), Role: models.RoleFarmer}

	token, err := GenerateToken("test-secret", user, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("test-secret", "not-a-token")
	assert.Error(t, err)
}
