package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const planPrompt = `Generate a 5-day study plan for the subject %q. The plan should cover these topics if provided: %q. ` +
	`If no topics are provided, create a general introductory plan for the subject. ` +
	`The plan must include daily goals, key concepts to cover, and suggested activities for active learning.`

// GeminiPlanGenerator 基于 Gemini 的学习计划生成器
type GeminiPlanGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiPlanGenerator 创建 Gemini 客户端
func NewGeminiPlanGenerator(ctx context.Context, apiKey, model string) (*GeminiPlanGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY 未设置")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Gemini客户端失败: %w", err)
	}
	return &GeminiPlanGenerator{client: client, model: model}, nil
}

// GenerateStudyPlan 请求结构化输出，返回原始 JSON 文本
func (g *GeminiPlanGenerator) GenerateStudyPlan(ctx context.Context, subject, notes string) ([]byte, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(fmt.Sprintf(planPrompt, subject, notes)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   studyPlanSchema(),
		})
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, errors.New("生成服务返回空内容")
	}
	return []byte(text), nil
}

func studyPlanSchema() *genai.Schema {
	stringList := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Description: desc,
			Items:       &genai.Schema{Type: genai.TypeString},
		}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"plan": {
				Type:        genai.TypeArray,
				Description: "An array of daily study plans for 5 days.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"day":        {Type: genai.TypeInteger, Description: "The day number (1-5)."},
						"goal":       {Type: genai.TypeString, Description: "The main goal for the day."},
						"concepts":   stringList("A list of key concepts to study."),
						"activities": stringList("A list of suggested activities for learning."),
					},
					Required: []string{"day", "goal", "concepts", "activities"},
				},
			},
		},
		Required: []string{"plan"},
	}
}
