package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"studysphere/config"
	"studysphere/models"
)

// GroupUpdate 群组合并更新，nil 字段保持原值
type GroupUpdate struct {
	Name      string                 `json:"name"`
	SubjectID *int                   `json:"subjectId"`
	Members   []int                  `json:"members"`
	Workspace *models.WorkspacePatch `json:"workspaceContent"`
}

// GroupService 群组服务
type GroupService struct {
	DB       *gorm.DB
	users    *UserService
	notifier ChangeNotifier
}

// NewGroupService 创建群组服务实例
func NewGroupService(db *gorm.DB, users *UserService, notifier ChangeNotifier) *GroupService {
	return &GroupService{DB: db, users: users, notifier: notifierOrNoop(notifier)}
}

// GetGroups 返回全部群组快照
func (s *GroupService) GetGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	if err := s.DB.WithContext(ctx).Order("id ASC").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// GetGroupsForUser 获取用户加入的所有群组
func (s *GroupService) GetGroupsForUser(ctx context.Context, userID int) ([]models.Group, error) {
	groups, err := s.GetGroups(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]models.Group, 0, len(groups))
	for _, g := range groups {
		if g.HasMember(userID) {
			mine = append(mine, g)
		}
	}
	return mine, nil
}

// GetGroupByID 根据ID获取群组
func (s *GroupService) GetGroupByID(ctx context.Context, id int) (*models.Group, error) {
	var group models.Group
	if err := s.DB.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

// GetGroupResponse 获取群组响应模型，成员中已不存在的用户会被跳过
func (s *GroupService) GetGroupResponse(ctx context.Context, id int) (*models.GroupResponse, error) {
	group, err := s.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &models.GroupResponse{
		Group:         *group,
		SubjectName:   models.SubjectName(group.SubjectID),
		MemberDetails: make([]models.User, 0, len(group.Members)),
	}
	for _, memberID := range group.Members {
		member, err := s.users.GetUser(ctx, memberID)
		if err != nil {
			continue
		}
		resp.MemberDetails = append(resp.MemberDetails, *member)
	}
	return resp, nil
}

// SaveGroup 按ID合并写入群组。不存在时创建（必须提供名称、科目和成员），
// 已存在时只有成员 userID 可以修改，成员关系在行锁内检查。
func (s *GroupService) SaveGroup(ctx context.Context, id, userID int, upd GroupUpdate) (*models.Group, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: 无效的群组ID", ErrValidation)
	}
	if upd.SubjectID != nil && !models.SubjectExists(*upd.SubjectID) {
		return nil, fmt.Errorf("%w: 科目不存在 %d", ErrValidation, *upd.SubjectID)
	}
	if upd.Members != nil {
		if err := s.validateMembers(ctx, upd.Members); err != nil {
			return nil, err
		}
	}
	whiteboard, err := s.normalizePatch(upd.Workspace)
	if err != nil {
		return nil, err
	}

	var group models.Group
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&group, id).Error
		creating := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !creating {
			return err
		}
		if !creating && !group.HasMember(userID) {
			return fmt.Errorf("%w: 不是群组成员", ErrForbidden)
		}
		if creating {
			if upd.Name == "" || upd.SubjectID == nil || len(upd.Members) == 0 {
				return fmt.Errorf("%w: 新群组必须提供名称、科目和成员", ErrValidation)
			}
			group = models.Group{ID: id}
		}

		if upd.Name != "" {
			group.Name = upd.Name
		}
		if upd.SubjectID != nil {
			group.SubjectID = *upd.SubjectID
		}
		if upd.Members != nil {
			group.Members = datatypes.NewJSONSlice(dedupe(upd.Members))
		}
		applyWorkspacePatch(&group.WorkspaceContent, upd.Workspace, whiteboard)

		if creating {
			return tx.Create(&group).Error
		}
		return tx.Save(&group).Error
	})
	if err != nil {
		return nil, wrapWriteErr(err)
	}

	s.afterWrite(ctx, &group)
	return &group, nil
}

// UpdateWorkspace 成员合并更新工作区（便签、白板）
func (s *GroupService) UpdateWorkspace(ctx context.Context, groupID, userID int, patch models.WorkspacePatch) (*models.Group, error) {
	whiteboard, err := s.normalizePatch(&patch)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, groupID, userID, func(w *models.WorkspaceContent) {
		applyWorkspacePatch(w, &patch, whiteboard)
	})
}

// SetStudyPlan 写入生成好的学习计划
func (s *GroupService) SetStudyPlan(ctx context.Context, groupID, userID int, plan *models.StudyPlan) (*models.Group, error) {
	return s.mutate(ctx, groupID, userID, func(w *models.WorkspaceContent) {
		w.StudyPlan = plan
	})
}

// mutate 在行锁内读取、修改并写回工作区，只有成员可以修改
func (s *GroupService) mutate(ctx context.Context, groupID, userID int, edit func(w *models.WorkspaceContent)) (*models.Group, error) {
	var group models.Group
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
		if !group.HasMember(userID) {
			return fmt.Errorf("%w: 不是群组成员", ErrForbidden)
		}
		edit(&group.WorkspaceContent)
		return tx.Save(&group).Error
	})
	if err != nil {
		return nil, wrapWriteErr(err)
	}

	s.afterWrite(ctx, &group)
	return &group, nil
}

func (s *GroupService) validateMembers(ctx context.Context, members []int) error {
	if len(members) == 0 {
		return fmt.Errorf("%w: 群组成员不能为空", ErrValidation)
	}
	for _, id := range members {
		if _, err := s.users.GetUser(ctx, id); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return fmt.Errorf("%w: 成员不存在 %d", ErrValidation, id)
			}
			return err
		}
	}
	return nil
}

// normalizePatch 预先处理白板快照，避免在事务内做图片编码
func (s *GroupService) normalizePatch(patch *models.WorkspacePatch) (string, error) {
	if patch == nil || patch.Whiteboard == nil || *patch.Whiteboard == "" {
		return "", nil
	}
	return NormalizeWhiteboard(*patch.Whiteboard, config.AppConfig.WhiteboardMaxWidth, config.AppConfig.WhiteboardMaxHeight)
}

func (s *GroupService) afterWrite(ctx context.Context, group *models.Group) {
	s.notifier.NotifyChange(ctx, ChangeEvent{
		Type:      EventGroupsChanged,
		Payload:   map[string]int{"groupId": group.ID},
		Timestamp: time.Now().UTC(),
	})
}

// applyWorkspacePatch 合并工作区字段；白板传空字符串表示清空
func applyWorkspacePatch(w *models.WorkspaceContent, patch *models.WorkspacePatch, whiteboard string) {
	if patch == nil {
		return
	}
	if patch.Scratchpad != nil {
		w.Scratchpad = *patch.Scratchpad
	}
	if patch.Whiteboard != nil {
		if whiteboard == "" {
			w.Whiteboard = nil
		} else {
			w.Whiteboard = &whiteboard
		}
	}
}

func wrapWriteErr(err error) error {
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrForbidden) || errors.Is(err, ErrGroupNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
