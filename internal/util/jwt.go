package util

import (
	"errors"
	"exam_grader_backend/internal/model"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims 只携带用户 ID，管理员权限每次请求查库确认
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

const ContextUserKey = "user"

func GenerateJWT(user *model.User, secret string, expiration time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

const ContextCurrentUserKey = "currentUser"

// SetCurrentUser 认证中间件查库后写入当前用户
func SetCurrentUser(c *gin.Context, user *model.User) {
	c.Set(ContextCurrentUserKey, user)
}

func CurrentUser(c *gin.Context) *model.User {
	v, exists := c.Get(ContextCurrentUserKey)
	if !exists {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
