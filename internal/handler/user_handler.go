package handler

import (
	"strconv"

	"sys_admin_go/internal/repository"
	"sys_admin_go/internal/service"
	"sys_admin_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责用户目录相关 HTTP 接口：新增、详情、分页搜索。
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 创建 UserHandler。
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// PageUserRequest 是分页搜索接口请求体。
// 各子串条件按“包含”匹配，留空表示不过滤；departmentIds 为空表示全部部门。
type PageUserRequest struct {
	DepartmentIDs []uint `json:"departmentIds"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Phone         string `json:"phone"`
	Remark        string `json:"remark"`
	Page          int    `json:"page"`
	Limit         int    `json:"limit"`
}

// Add 管理员新增用户。
func (h *UserHandler) Add(c *gin.Context) {
	var req service.CreateUserParams
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Add: failed to bind request: %v", err)
		respondBadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.Add(req); err != nil {
		log.Warnf("Add: failed to add user %q: %v", req.Username, err)
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// Info 查询用户详情。
func (h *UserHandler) Info(c *gin.Context) {
	userID64, err := strconv.ParseUint(c.Query("userId"), 10, 32)
	if err != nil || userID64 == 0 {
		respondBadRequest(c, "Invalid userId parameter")
		return
	}

	info, err := h.userService.Info(uint(userID64))
	if err != nil {
		log.Warnf("Info: failed to query user %d: %v", userID64, err)
		respondError(c, err)
		return
	}
	respondOK(c, info)
}

// Page 分页搜索用户列表。
// 结果始终排除超管用户和发起查询的用户自己；total 反映过滤条件而非分页窗口。
func (h *UserHandler) Page(c *gin.Context) {
	claims, ok := getClaimsFromContext(c)
	if !ok {
		return
	}

	var req PageUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Page: failed to bind request: %v", err)
		respondBadRequest(c, "Invalid request body")
		return
	}

	list, total, err := h.userService.Page(claims.UID, repository.PageSearchQuery{
		DepartmentIDs: req.DepartmentIDs,
		Name:          req.Name,
		Username:      req.Username,
		Phone:         req.Phone,
		Remark:        req.Remark,
		Page:          req.Page,
		Limit:         req.Limit,
	})
	if err != nil {
		log.Warnf("Page: failed to search users: %v", err)
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"list":  list,
		"total": total,
		"page":  req.Page,
		"limit": req.Limit,
	})
}
