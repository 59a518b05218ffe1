// Package token 负责访问令牌与刷新令牌的签发和校验。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 签名不合法、已过期或 Claims 结构不符。
var ErrInvalidToken = errors.New("invalid or expired token")

// JWTManager 是 JWT 管理器，负责生成和验证 JWT
type JWTManager struct {
	secretKey            []byte
	accessTokenDuration  time.Duration // 访问令牌过期时间
	refreshTokenDuration time.Duration // 刷新令牌过期时间
}

// AccessClaims 是访问令牌的 Claims。
// PV 是签发时刻的密码版本号，中间件会与缓存中的当前版本比对，
// 版本被提升后所有旧令牌立即失效。
type AccessClaims struct {
	UID      uint   `json:"uid"`
	Username string `json:"username"`
	PV       int    `json:"pv"`
	jwt.RegisteredClaims
}

// RefreshClaims 是刷新令牌的 Claims，只携带用户 ID。
type RefreshClaims struct {
	UID uint `json:"uid"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager
func NewJWTManager(secretKey string, accessTokenDuration, refreshTokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:            []byte(secretKey),
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// GenerateAccessToken 签发访问令牌，payload 为 {uid, username, pv}。
func (manager *JWTManager) GenerateAccessToken(uid uint, username string, pv int) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		UID:      uid,
		Username: username,
		PV:       pv,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(manager.accessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(manager.secretKey)
}

// GenerateRefreshToken 签发刷新令牌，payload 只有 {uid}。
func (manager *JWTManager) GenerateRefreshToken(uid uint) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(manager.refreshTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(manager.secretKey)
}

// VerifyAccessToken 验证访问令牌并返回其 Claims。
// 使用 WithValidMethods 精确限制只允许 HS256 算法，防止算法篡改攻击（如 alg=none）。
func (manager *JWTManager) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (interface{}, error) {
		return manager.secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*AccessClaims)
	if !ok || claims.UID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefreshToken 验证刷新令牌并返回其 Claims。
func (manager *JWTManager) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, func(t *jwt.Token) (interface{}, error) {
		return manager.secretKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*RefreshClaims)
	if !ok || claims.UID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
