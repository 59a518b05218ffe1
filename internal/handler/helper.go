package handler

import (
	"errors"
	"net/http"
	"strings"

	"sys_admin_go/internal/service"
	"sys_admin_go/pkg/token"

	"github.com/gin-gonic/gin"
)

// 对外暴露的业务错误码。数值本身不携带含义，由前端按码表展示文案。
const (
	codeOK                 = 200
	codeUserExists         = 10001
	codeInvalidCaptcha     = 10002
	codeInvalidCredentials = 10003
	codeUserNotFound       = 10017
	codeDeptNotFound       = 10018
	codeRootUserMissing    = 10019
	codeInvalidToken       = 11111
	codeInternal           = 500
)

// mapServiceError 把 Service 层哨兵错误转换为 HTTP 状态码、业务错误码和对外消息。
// 统一映射的价值：
// 1. Handler 不必散落大量 if/else 判断。
// 2. 对外返回口径稳定，避免泄露内部实现细节。
func mapServiceError(err error) (httpStatus, code int, message string) {
	switch {
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, codeUserExists, "User already exists"
	case errors.Is(err, service.ErrInvalidCaptcha):
		return http.StatusBadRequest, codeInvalidCaptcha, "Invalid or expired captcha"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, codeInvalidCredentials, "Invalid username or password"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, codeUserNotFound, "User not found"
	case errors.Is(err, service.ErrDepartmentNotFound):
		return http.StatusNotFound, codeDeptNotFound, "Department not found"
	case errors.Is(err, service.ErrRootUserMissing):
		return http.StatusInternalServerError, codeRootUserMissing, "Root role is not bound to any user"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, codeInvalidToken, "Invalid or expired access token"
	default:
		return http.StatusInternalServerError, codeInternal, "Internal server error"
	}
}

// respondError 按统一信封写出错误响应。
func respondError(c *gin.Context, err error) {
	status, code, msg := mapServiceError(err)
	c.JSON(status, gin.H{
		"code":    code,
		"message": msg,
	})
}

// respondOK 按统一信封写出成功响应，data 可以为 nil。
func respondOK(c *gin.Context, data interface{}) {
	body := gin.H{
		"code":    codeOK,
		"message": "success",
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

// respondBadRequest 用于请求体/参数解析失败。
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    http.StatusBadRequest,
		"message": message,
	})
}

// extractBearerToken 从 Authorization 请求头提取 Bearer Token。
// 期望格式：Authorization: Bearer <token>
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}

// getClaimsFromContext 读取认证中间件注入的访问令牌 Claims。
// 上下文异常时直接写错误响应并返回 false，调用方只需 `if !ok { return }`。
func getClaimsFromContext(c *gin.Context) (*token.AccessClaims, bool) {
	claimsVal, exists := c.Get("claims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    codeInvalidToken,
			"message": "Unauthorized",
		})
		return nil, false
	}

	claims, ok := claimsVal.(*token.AccessClaims)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    codeInternal,
			"message": "Internal server error",
		})
		return nil, false
	}
	return claims, true
}
