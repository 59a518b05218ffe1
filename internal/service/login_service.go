package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"sys_admin_go/internal/cache"
	"sys_admin_go/internal/model"
	"sys_admin_go/internal/repository"
	"sys_admin_go/pkg/captcha"
	"sys_admin_go/pkg/hash"
	"sys_admin_go/pkg/log"
	"sys_admin_go/pkg/token"

	"github.com/google/uuid"
)

// 会话缓存的过期策略。
// 权限快照和密码版本号刻意不设置过期时间：密码版本号一旦过期被重置，
// 已签发令牌里的 pv 会重新对上，令牌失效语义就被破坏了。
const (
	captchaTTL = 5 * time.Minute
	tokenTTL   = 24 * time.Hour
)

// ImageCaptcha 是验证码接口的返回值：内嵌图片 + 不透明标识。
type ImageCaptcha struct {
	Img string `json:"img"`
	ID  string `json:"id"`
}

// LoginSign 是登录成功后下发的令牌对。
type LoginSign struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// PermMenu 是用户的菜单树和扁平权限码列表。
type PermMenu struct {
	Menus []*model.SysMenuNode `json:"menus"`
	Perms []string             `json:"perms"`
}

// LoginService 负责一次登录的各个环节：验证码、凭证比对、令牌签发、会话缓存。
//
// 注意：CheckImgCaptcha 与 GetLoginSign 是相互独立的步骤，GetLoginSign 内部
// 不会复核验证码是否通过，调用方（HTTP 层）必须先校验验证码再换取令牌。
type LoginService interface {
	CreateImageCaptcha(ctx context.Context, width, height int) (*ImageCaptcha, error)
	CheckImgCaptcha(ctx context.Context, id, code string) error
	GetLoginSign(ctx context.Context, username, password, ip, ua string) (*LoginSign, error)
	ClearLoginStatus(userID uint) error
	GetUserByToken(tokenString string) (*AccountProfile, error)
	GetPermMenu(userID uint) (*PermMenu, error)
	GetPasswordVersion(ctx context.Context, userID uint) (string, error)
	GetToken(ctx context.Context, userID uint) (string, error)
	GetPerms(ctx context.Context, userID uint) (string, error)
}

type loginService struct {
	userService  UserService
	menuService  MenuService
	loginLogRepo repository.LoginLogRepository
	sessionCache cache.SessionCache
	jwtManager   *token.JWTManager
}

// NewLoginService 创建 LoginService。
func NewLoginService(
	userService UserService,
	menuService MenuService,
	loginLogRepo repository.LoginLogRepository,
	sessionCache cache.SessionCache,
	jwtManager *token.JWTManager,
) LoginService {
	return &loginService{
		userService:  userService,
		menuService:  menuService,
		loginLogRepo: loginLogRepo,
		sessionCache: sessionCache,
		jwtManager:   jwtManager,
	}
}

// CreateImageCaptcha 生成 4 位数字验证码。
// 明文以不透明 id 为键写入会话缓存，5 分钟过期；宽高传 0 时使用默认尺寸 100x50。
func (s *loginService) CreateImageCaptcha(ctx context.Context, width, height int) (*ImageCaptcha, error) {
	if s.sessionCache == nil {
		return nil, ErrInternal
	}

	code, img, err := captcha.Generate(width, height)
	if err != nil {
		log.Error("CreateImageCaptcha: failed to render captcha", err)
		return nil, ErrInternal
	}

	id := uuid.NewString()
	if err := s.sessionCache.Set(ctx, cache.CaptchaKey(id), code, captchaTTL); err != nil {
		log.Error("CreateImageCaptcha: failed to cache captcha code", err)
		return nil, ErrInternal
	}

	return &ImageCaptcha{Img: img, ID: id}, nil
}

// CheckImgCaptcha 校验验证码，大小写不敏感。
// 校验通过后立即删除缓存条目，同一验证码只能用一次。
func (s *loginService) CheckImgCaptcha(ctx context.Context, id, code string) error {
	if s.sessionCache == nil {
		return ErrInternal
	}

	cached, err := s.sessionCache.Get(ctx, cache.CaptchaKey(id))
	if err != nil {
		log.Error("CheckImgCaptcha: failed to read captcha code", err)
		return ErrInternal
	}
	if cached == "" || !strings.EqualFold(cached, code) {
		return ErrInvalidCaptcha
	}

	if err := s.sessionCache.Del(ctx, cache.CaptchaKey(id)); err != nil {
		log.Error("CheckImgCaptcha: failed to delete captcha code", err)
		return ErrInternal
	}
	return nil
}

// GetLoginSign 比对凭证并签发令牌。
// 成功后写入会话缓存（令牌 24 小时过期，权限快照和密码版本号不设过期），
// 并记录一条登录审计日志。凭证比对失败不产生任何缓存写入。
func (s *loginService) GetLoginSign(ctx context.Context, username, password, ip, ua string) (*LoginSign, error) {
	if s.userService == nil || s.menuService == nil || s.sessionCache == nil || s.jwtManager == nil {
		return nil, ErrInternal
	}

	user, err := s.userService.FindUserByUserName(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// 用户不存在与密码错误返回同一错误，防止用户枚举
		return nil, ErrInvalidCredentials
	}

	if !hash.VerifyPassword(password, user.PSalt, user.Password) {
		return nil, ErrInvalidCredentials
	}

	perms, err := s.menuService.GetPerms(user.ID)
	if err != nil {
		return nil, err
	}

	pv := s.currentPasswordVersion(ctx, user.ID)

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Username, pv)
	if err != nil {
		log.Error("GetLoginSign: failed to sign access token", err)
		return nil, ErrInternal
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		log.Error("GetLoginSign: failed to sign refresh token", err)
		return nil, ErrInternal
	}

	permsJSON, err := json.Marshal(perms)
	if err != nil {
		log.Error("GetLoginSign: failed to marshal perms", err)
		return nil, ErrInternal
	}

	if err := s.sessionCache.Set(ctx, cache.TokenKey(user.ID), accessToken, tokenTTL); err != nil {
		log.Error("GetLoginSign: failed to cache token", err)
		return nil, ErrInternal
	}
	if err := s.sessionCache.Set(ctx, cache.PermsKey(user.ID), string(permsJSON), 0); err != nil {
		log.Error("GetLoginSign: failed to cache perms", err)
		return nil, ErrInternal
	}
	if err := s.sessionCache.Set(ctx, cache.PasswordVersionKey(user.ID), strconv.Itoa(pv), 0); err != nil {
		log.Error("GetLoginSign: failed to cache password version", err)
		return nil, ErrInternal
	}

	// 审计日志失败不阻断登录，只记录错误
	if s.loginLogRepo != nil {
		entry := &model.SysLoginLog{UserID: user.ID, IP: ip, UA: ua}
		if err := s.loginLogRepo.Create(entry); err != nil {
			log.Error("GetLoginSign: failed to save login log", err)
		}
	}

	return &LoginSign{Token: accessToken, RefreshToken: refreshToken}, nil
}

// ClearLoginStatus 清除登录状态：把用户置为禁用。
// 缓存中的令牌和权限快照不在这里清理，而是由下一次请求时中间件的校验链拦下。
func (s *loginService) ClearLoginStatus(userID uint) error {
	if s.userService == nil {
		return ErrInternal
	}
	return s.userService.Forbidden(userID)
}

// GetUserByToken 按访问令牌解出用户并返回简要资料。
func (s *loginService) GetUserByToken(tokenString string) (*AccountProfile, error) {
	if s.userService == nil || s.jwtManager == nil {
		return nil, ErrInternal
	}

	claims, err := s.jwtManager.VerifyAccessToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return s.userService.AccountInfo(claims.UID)
}

// GetPermMenu 返回用户的菜单树和权限码列表。
func (s *loginService) GetPermMenu(userID uint) (*PermMenu, error) {
	if s.menuService == nil {
		return nil, ErrInternal
	}

	menus, err := s.menuService.GetMenus(userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.menuService.GetPerms(userID)
	if err != nil {
		return nil, err
	}
	return &PermMenu{Menus: menus, Perms: perms}, nil
}

// GetPasswordVersion 读取缓存中的密码版本号，未设置时返回空串。
func (s *loginService) GetPasswordVersion(ctx context.Context, userID uint) (string, error) {
	return s.sessionCache.Get(ctx, cache.PasswordVersionKey(userID))
}

// GetToken 读取缓存中的访问令牌。
func (s *loginService) GetToken(ctx context.Context, userID uint) (string, error) {
	return s.sessionCache.Get(ctx, cache.TokenKey(userID))
}

// GetPerms 读取缓存中的权限快照（JSON 串）。
func (s *loginService) GetPerms(ctx context.Context, userID uint) (string, error) {
	return s.sessionCache.Get(ctx, cache.PermsKey(userID))
}

// currentPasswordVersion 读取当前密码版本号，缓存缺失或值非法时默认为 1。
func (s *loginService) currentPasswordVersion(ctx context.Context, userID uint) int {
	raw, err := s.sessionCache.Get(ctx, cache.PasswordVersionKey(userID))
	if err != nil || raw == "" {
		return 1
	}
	pv, err := strconv.Atoi(raw)
	if err != nil || pv <= 0 {
		return 1
	}
	return pv
}
