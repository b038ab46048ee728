package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studysphere/models"
)

// GetSubjects 返回科目目录和档案可选项
func GetSubjects(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"subjects":       models.AllSubjects,
		"roles":          []models.SubjectRole{models.NeedsHelp, models.CanHelp},
		"learningStyles": models.AllLearningStyles,
		"studyMethods":   models.AllStudyMethods,
	})
}

// GetAvailability 返回可选的空闲时段
func GetAvailability(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"availability": models.AllAvailability,
	})
}
