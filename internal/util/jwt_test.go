package util

import (
	"exam_grader_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 42}}

	token, err := GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
}

func TestJWTRejects(t *testing.T) {
	user := &model.User{BaseModel: model.BaseModel{ID: 7}}

	token, err := GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(token, "another-secret-another-secret-xx")
	assert.Error(t, err)

	expired, err := GenerateJWT(user, secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.Error(t, err)

	anonymous, err := GenerateJWT(&model.User{}, secret, time.Hour)
	require.NoError(t, err)
	_, err = ParseJWT(anonymous, secret)
	assert.Error(t, err)

	_, err = ParseJWT("not.a.token", secret)
	assert.Error(t, err)
}
