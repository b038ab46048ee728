package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// StudyPlanDay 学习计划中的一天
type StudyPlanDay struct {
	Day        int      `json:"day" validate:"min=1,max=5"`
	Goal       string   `json:"goal" validate:"required"`
	Concepts   []string `json:"concepts" validate:"required,min=1,dive,required"`
	Activities []string `json:"activities" validate:"required,min=1,dive,required"`
}

// StudyPlan 五天学习计划
type StudyPlan struct {
	Plan []StudyPlanDay `json:"plan" validate:"required,min=1,max=5,unique=Day,dive"`
}

var planValidate = validator.New()

// Validate 校验计划结构
func (p *StudyPlan) Validate() error {
	if err := planValidate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStudyPlan, err)
	}
	return nil
}

// ParseStudyPlan 解析并校验生成服务返回的JSON，任何缺失或格式错误都视为失败，不返回部分结果
func ParseStudyPlan(data []byte) (*StudyPlan, error) {
	var plan StudyPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStudyPlan, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}
