package handler

import (
	"strconv"

	"sys_admin_go/internal/service"
	"sys_admin_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// LoginHandler 负责登录域相关 HTTP 接口：验证码、登录、当前账号信息、权限菜单、登出。
type LoginHandler struct {
	loginService service.LoginService
}

// NewLoginHandler 创建 LoginHandler。
func NewLoginHandler(loginService service.LoginService) *LoginHandler {
	return &LoginHandler{loginService: loginService}
}

// LoginRequest 是登录接口请求体。
// 验证码校验和凭证校验是两个独立步骤，Login 按固定顺序调用：先验证码后凭证。
type LoginRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	CaptchaID  string `json:"captchaId" binding:"required"`
	VerifyCode string `json:"verifyCode" binding:"required"`
}

// Captcha 生成图形验证码。
// width/height 查询参数缺省或非法时使用默认尺寸。
func (h *LoginHandler) Captcha(c *gin.Context) {
	width, _ := strconv.Atoi(c.DefaultQuery("width", "0"))
	height, _ := strconv.Atoi(c.DefaultQuery("height", "0"))

	result, err := h.loginService.CreateImageCaptcha(c.Request.Context(), width, height)
	if err != nil {
		log.Warnf("Captcha: failed to create captcha: %v", err)
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// Login 处理登录请求并返回令牌对。
func (h *LoginHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Login: failed to bind request: %v", err)
		respondBadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	if err := h.loginService.CheckImgCaptcha(ctx, req.CaptchaID, req.VerifyCode); err != nil {
		log.Warnf("Login: captcha check failed for %q: %v", req.Username, err)
		respondError(c, err)
		return
	}

	sign, err := h.loginService.GetLoginSign(ctx, req.Username, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		log.Warnf("Login: failed to login user %q: %v", req.Username, err)
		respondError(c, err)
		return
	}
	respondOK(c, sign)
}

// AccountInfo 返回当前令牌对应用户的简要资料。
func (h *LoginHandler) AccountInfo(c *gin.Context) {
	tokenString, err := extractBearerToken(c.GetHeader("Authorization"))
	if err != nil {
		respondError(c, service.ErrInvalidToken)
		return
	}

	profile, err := h.loginService.GetUserByToken(tokenString)
	if err != nil {
		log.Warnf("AccountInfo: failed to resolve user by token: %v", err)
		respondError(c, err)
		return
	}
	respondOK(c, profile)
}

// PermMenu 返回当前用户的菜单树和权限码列表。
func (h *LoginHandler) PermMenu(c *gin.Context) {
	claims, ok := getClaimsFromContext(c)
	if !ok {
		return
	}

	permMenu, err := h.loginService.GetPermMenu(claims.UID)
	if err != nil {
		log.Warnf("PermMenu: failed to query perm menu for user %d: %v", claims.UID, err)
		respondError(c, err)
		return
	}
	respondOK(c, permMenu)
}

// Logout 清除当前用户的登录状态。
func (h *LoginHandler) Logout(c *gin.Context) {
	claims, ok := getClaimsFromContext(c)
	if !ok {
		return
	}

	if err := h.loginService.ClearLoginStatus(claims.UID); err != nil {
		log.Warnf("Logout: failed to clear login status for user %d: %v", claims.UID, err)
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}
