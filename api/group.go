package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studysphere/models"
	"studysphere/services"
)

// GroupController 学习小组控制器
type GroupController struct {
	GroupService *services.GroupService
	PlanService  *services.PlanService
}

// NewGroupController 创建群组控制器
func NewGroupController(groupService *services.GroupService, planService *services.PlanService) *GroupController {
	return &GroupController{
		GroupService: groupService,
		PlanService:  planService,
	}
}

// GetGroups 获取群组列表，mine=true 时只返回当前用户所在的群组
func (c *GroupController) GetGroups(ctx *gin.Context) {
	var (
		groups []models.Group
		err    error
	)
	if ctx.Query("mine") == "true" {
		userID, ok := currentUserID(ctx)
		if !ok {
			return
		}
		groups, err = c.GroupService.GetGroupsForUser(ctx.Request.Context(), userID)
	} else {
		groups, err = c.GroupService.GetGroups(ctx.Request.Context())
	}
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"groups": groups,
	})
}

// GetGroupByID 获取群组详情，附带科目名称和成员资料
func (c *GroupController) GetGroupByID(ctx *gin.Context) {
	groupID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	group, err := c.GroupService.GetGroupResponse(ctx.Request.Context(), groupID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"group": group,
	})
}

// SaveGroup 创建或合并更新群组，已有群组只允许成员修改
func (c *GroupController) SaveGroup(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req services.GroupUpdate
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.GroupService.SaveGroup(ctx.Request.Context(), groupID, userID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"group": group,
	})
}

// UpdateWorkspace 合并更新共享工作区（便签、白板）
func (c *GroupController) UpdateWorkspace(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var patch models.WorkspacePatch
	if !bindJSON(ctx, &patch) {
		return
	}

	group, err := c.GroupService.UpdateWorkspace(ctx.Request.Context(), groupID, userID, patch)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"group": group,
	})
}

// GeneratePlan 为群组生成五日学习计划
func (c *GroupController) GeneratePlan(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	groupID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if ctx.Request.ContentLength > 0 && !bindJSON(ctx, &req) {
		return
	}

	group, err := c.PlanService.GeneratePlan(ctx.Request.Context(), groupID, userID, req.Notes)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"group": group,
		"plan":  group.WorkspaceContent.StudyPlan,
	})
}
