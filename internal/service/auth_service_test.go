package service

import (
	"exam_grader_backend/internal/config"
	"exam_grader_backend/internal/repository"
	"exam_grader_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-test-secret-test-secret"

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour}}
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	result, err := svc.Register(RegisterReq{Username: "alice", Email: "Alice@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.True(t, result.User.IsActive)
	assert.False(t, result.User.IsAdmin)
	assert.NotEqual(t, "secret1", result.User.PasswordHash)

	claims, err := util.ParseJWT(result.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
}

func TestRegister_Validation(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(RegisterReq{Username: "taken", Email: "taken@example.com", Password: "secret1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     RegisterReq
		wantErr error
		invalid bool
	}{
		{name: "duplicate username", req: RegisterReq{Username: "taken", Email: "new@example.com", Password: "secret1"}, wantErr: util.ErrUsernameTaken},
		{name: "duplicate email", req: RegisterReq{Username: "fresh", Email: "TAKEN@example.com", Password: "secret1"}, wantErr: util.ErrEmailRegistered},
		{name: "short username", req: RegisterReq{Username: "ab", Email: "ab@example.com", Password: "secret1"}, invalid: true},
		{name: "username with space", req: RegisterReq{Username: "bad name", Email: "bad@example.com", Password: "secret1"}, invalid: true},
		{name: "bad email", req: RegisterReq{Username: "bob", Email: "not-an-email", Password: "secret1"}, invalid: true},
		{name: "short password", req: RegisterReq{Username: "bob", Email: "bob@example.com", Password: "12345"}, invalid: true},
		{name: "missing fields", req: RegisterReq{}, invalid: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.req)
			require.Error(t, err)
			if tc.invalid {
				assert.True(t, util.IsValidationError(err), err.Error())
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	reg, err := svc.Register(RegisterReq{Username: "carol", Email: "carol@example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, identifier := range []string{"carol", "carol@example.com"} {
		result, err := svc.Login(LoginReq{UsernameOrEmail: identifier, Password: "secret1"})
		require.NoError(t, err, identifier)
		assert.Equal(t, reg.User.ID, result.User.ID)
		assert.NotEmpty(t, result.AccessToken)
	}

	_, err = svc.Login(LoginReq{UsernameOrEmail: "carol", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = svc.Login(LoginReq{UsernameOrEmail: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, err = svc.Login(LoginReq{})
	assert.True(t, util.IsValidationError(err))

	require.NoError(t, db.Model(reg.User).Update("is_active", false).Error)
	_, err = svc.Login(LoginReq{UsernameOrEmail: "carol", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrAccountDisabled)
}

func TestLogin_MixedCaseEmail(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	reg, err := svc.Register(RegisterReq{Username: "dana", Email: "Dana@Example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, identifier := range []string{"Dana@Example.com", "dana@example.com", "DANA@EXAMPLE.COM"} {
		result, err := svc.Login(LoginReq{UsernameOrEmail: identifier, Password: "secret1"})
		require.NoError(t, err, identifier)
		assert.Equal(t, reg.User.ID, result.User.ID)
	}

	_, err = svc.Login(LoginReq{UsernameOrEmail: "DANA", Password: "secret1"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	u := createUser(t, db, "dave", false)

	got, err := svc.GetUser(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave", got.Username)

	_, err = svc.GetUser(9999)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
