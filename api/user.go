package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studysphere/models"
	"studysphere/services"
)

// UserController 用户档案控制器
type UserController struct {
	UserService *services.UserService
}

// NewUserController 创建用户控制器
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

// GetAllUsers 获取所有用户
func (c *UserController) GetAllUsers(ctx *gin.Context) {
	users, err := c.UserService.GetUsers(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// GetUserByID 根据ID获取用户
func (c *UserController) GetUserByID(ctx *gin.Context) {
	userID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	user, err := c.UserService.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// UpdateUser 合并更新自己的用户资料
func (c *UserController) UpdateUser(ctx *gin.Context) {
	userID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	var req services.UserUpdate
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.UserService.SaveUser(ctx.Request.Context(), userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "更新成功",
		"user":    user,
	})
}

// SelectInterest 选择科目角色，重复选择同一角色即取消
func (c *UserController) SelectInterest(ctx *gin.Context) {
	userID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	var req struct {
		SubjectID int    `json:"subjectId" binding:"required"`
		Role      string `json:"role" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	role, err := models.ParseSubjectRole(req.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}

	user, err := c.UserService.ApplyInterest(ctx.Request.Context(), userID, req.SubjectID, role)
	c.respondUser(ctx, user, err)
}

// ToggleMethod 切换偏好的学习方式
func (c *UserController) ToggleMethod(ctx *gin.Context) {
	userID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	var req struct {
		Method string `json:"method" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	method, err := models.ParseStudyMethod(req.Method)
	if err != nil {
		respondError(ctx, err)
		return
	}

	user, err := c.UserService.ToggleMethod(ctx.Request.Context(), userID, method)
	c.respondUser(ctx, user, err)
}

// ToggleAvailability 切换空闲时段
func (c *UserController) ToggleAvailability(ctx *gin.Context) {
	userID, ok := c.ownerID(ctx)
	if !ok {
		return
	}

	var req struct {
		Slot string `json:"slot" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.UserService.ToggleSlot(ctx.Request.Context(), userID, req.Slot)
	c.respondUser(ctx, user, err)
}

// ownerID 解析路径中的用户ID，只允许修改自己的资料
func (c *UserController) ownerID(ctx *gin.Context) (int, bool) {
	current, ok := currentUserID(ctx)
	if !ok {
		return 0, false
	}
	userID, ok := paramID(ctx, "id")
	if !ok {
		return 0, false
	}
	if userID != current {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "只能修改自己的资料"})
		return 0, false
	}
	return userID, true
}

func (c *UserController) respondUser(ctx *gin.Context, user *models.User, err error) {
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user})
}
