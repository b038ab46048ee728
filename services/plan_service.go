package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"studysphere/models"
)

// PlanGenerator 外部学习计划生成服务，返回原始 JSON
type PlanGenerator interface {
	GenerateStudyPlan(ctx context.Context, subject, notes string) ([]byte, error)
}

// PlanService 为群组生成并保存学习计划
type PlanService struct {
	groups    *GroupService
	generator PlanGenerator
	timeout   time.Duration
}

// NewPlanService 创建学习计划服务，generator 为 nil 时所有生成请求都会失败
func NewPlanService(groups *GroupService, generator PlanGenerator, timeout time.Duration) *PlanService {
	return &PlanService{groups: groups, generator: generator, timeout: timeout}
}

// GeneratePlan 调用生成服务并写入群组工作区。
// 任何失败都返回 ErrPlanGenerationFailed，原有计划保持不变。
func (s *PlanService) GeneratePlan(ctx context.Context, groupID, userID int, notes string) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("%w: 不是群组成员", ErrForbidden)
	}

	plan, err := s.generate(ctx, models.SubjectName(group.SubjectID), notes)
	if err != nil {
		planGenerations.WithLabelValues("failed").Inc()
		log.Printf("生成学习计划失败: group=%d err=%v", groupID, err)
		return nil, fmt.Errorf("%w: %v", ErrPlanGenerationFailed, err)
	}
	planGenerations.WithLabelValues("ok").Inc()

	return s.groups.SetStudyPlan(ctx, groupID, userID, plan)
}

func (s *PlanService) generate(ctx context.Context, subject, notes string) (*models.StudyPlan, error) {
	if s.generator == nil {
		return nil, errors.New("未配置学习计划生成服务")
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	raw, err := s.generator.GenerateStudyPlan(ctx, subject, notes)
	if err != nil {
		return nil, err
	}
	return models.ParseStudyPlan(raw)
}
