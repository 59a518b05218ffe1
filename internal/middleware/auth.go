package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"sys_admin_go/internal/service"
	"sys_admin_go/pkg/token"

	"github.com/gin-gonic/gin"
)

// 认证失败统一返回该业务码，和登录域其他令牌错误保持一致。
const codeInvalidToken = 11111

// AuthMiddleware 是 JWT 认证中间件，用于保护需要登录才能访问的接口。
// 工作流程：
//  1. 从请求头 Authorization 中提取 Bearer Token
//  2. 验证 Token 签名和有效期
//  3. 比对 Token 中的密码版本号与缓存中的当前版本，版本被提升过的旧令牌直接拒绝
//  4. 比对 Token 与缓存中该用户的当前令牌，重新登录后旧令牌失效
//  5. 将 claims 注入 Gin 上下文，后续 Handler 通过 c.Get("claims") 获取
func AuthMiddleware(jwtManager *token.JWTManager, loginService service.LoginService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防御性检查：确保依赖已正确注入
		if jwtManager == nil || loginService == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}

		tokenString, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c, "Invalid authorization header")
			return
		}

		claims, err := jwtManager.VerifyAccessToken(tokenString)
		if err != nil || claims == nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		ctx := c.Request.Context()

		// 密码版本比对：缓存缺失按默认版本 1 处理，与签发时的取值口径一致
		cachedPV, err := loginService.GetPasswordVersion(ctx, claims.UID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}
		if cachedPV == "" {
			cachedPV = "1"
		}
		if cachedPV != strconv.Itoa(claims.PV) {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		// 当前令牌比对：用户重新登录后，之前签发的令牌不再可用
		cachedToken, err := loginService.GetToken(ctx, claims.UID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    http.StatusInternalServerError,
				"message": "Internal server error",
			})
			return
		}
		if cachedToken == "" || cachedToken != tokenString {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    codeInvalidToken,
		"message": message,
	})
}

// extractBearerToken 从 Authorization 请求头中提取 Bearer Token。
// 使用 strings.EqualFold 做大小写不敏感比较，兼容 "bearer"、"BEARER" 等写法。
func extractBearerToken(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header")
	}
	if parts[1] == "" {
		return "", errors.New("empty token")
	}
	return parts[1], nil
}
