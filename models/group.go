package models

import (
	"time"

	"gorm.io/datatypes"
)

// WorkspaceContent 群组共享工作区
type WorkspaceContent struct {
	Scratchpad string     `json:"scratchpad"`
	Whiteboard *string    `json:"whiteboard,omitempty"` // 画布快照 data URL
	StudyPlan  *StudyPlan `json:"studyPlan,omitempty"`
}

// Group 学习小组模型
type Group struct {
	ID               int                      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name             string                   `json:"name" gorm:"not null"`
	SubjectID        int                      `json:"subjectId" gorm:"not null"`
	Members          datatypes.JSONSlice[int] `json:"members"`
	WorkspaceContent WorkspaceContent         `json:"workspaceContent" gorm:"type:text;serializer:json"`
	CreatedAt        time.Time                `json:"-"`
	UpdatedAt        time.Time                `json:"-"`
}

// HasMember 判断用户是否为群组成员
func (g *Group) HasMember(userID int) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// WorkspacePatch 工作区合并更新请求，nil 字段保持不变
type WorkspacePatch struct {
	Scratchpad *string `json:"scratchpad"`
	Whiteboard *string `json:"whiteboard"`
}

// GroupResponse 群组响应模型
type GroupResponse struct {
	Group
	SubjectName   string `json:"subjectName"`
	MemberDetails []User `json:"memberDetails,omitempty"`
}
