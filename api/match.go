package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studysphere/matcher"
	"studysphere/services"
)

// MatchController 学习伙伴推荐控制器
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController 创建推荐控制器
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{
		MatchService: matchService,
	}
}

// FindPartners 按筛选条件返回排序后的候选人，参数缺省或为 any 表示不限
func (c *MatchController) FindPartners(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	filter, err := matcher.ParseFilter(
		ctx.Query("subject"),
		ctx.Query("role"),
		ctx.Query("studyMethod"),
		ctx.Query("learningStyle"),
	)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "筛选条件错误: " + err.Error()})
		return
	}
	filter = filter.Effective()

	matches, err := c.MatchService.FindPartners(ctx.Request.Context(), userID, filter)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"filter": gin.H{
			"subject":       filter.Subject.String(),
			"role":          filter.Role.String(),
			"studyMethod":   filter.Method.String(),
			"learningStyle": filter.Style.String(),
		},
		"matches": matches,
	})
}
