package models

import "errors"

var (
	// ErrInvalidEnum 枚举取值无效
	ErrInvalidEnum = errors.New("无效的枚举值")
	// ErrInvalidProfile 档案内容不合法
	ErrInvalidProfile = errors.New("无效的用户档案")
	// ErrInvalidStudyPlan 学习计划结构不合法
	ErrInvalidStudyPlan = errors.New("无效的学习计划")
)
