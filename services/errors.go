package services

import "errors"

var (
	ErrUserNotFound  = errors.New("用户不存在")
	ErrGroupNotFound = errors.New("群组不存在")
	ErrForbidden     = errors.New("没有权限")
	ErrValidation    = errors.New("参数校验失败")
	ErrEmptyMessage  = errors.New("消息内容不能为空")
	ErrPersistence   = errors.New("数据保存失败")
	// ErrPlanGenerationFailed 学习计划生成失败，与“尚未生成”区分
	ErrPlanGenerationFailed = errors.New("学习计划生成失败")
)
