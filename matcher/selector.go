package matcher

import (
	"fmt"
	"strconv"
	"strings"

	"studysphere/models"
)

// AnyValue 查询参数中表示“不限”的取值
const AnyValue = "any"

// Selector 可选筛选条件：要么是 Any，要么是一个具体取值。零值即为 Any。
type Selector[T comparable] struct {
	value T
	set   bool
}

// Any 返回不限条件
func Any[T comparable]() Selector[T] {
	return Selector[T]{}
}

// Only 返回只匹配 v 的条件
func Only[T comparable](v T) Selector[T] {
	return Selector[T]{value: v, set: true}
}

// IsAny 是否为不限
func (s Selector[T]) IsAny() bool {
	return !s.set
}

// Value 返回具体取值，Any 时 ok 为 false
func (s Selector[T]) Value() (v T, ok bool) {
	return s.value, s.set
}

// Matches Any 匹配一切，否则要求相等
func (s Selector[T]) Matches(v T) bool {
	return !s.set || s.value == v
}

func (s Selector[T]) String() string {
	if !s.set {
		return AnyValue
	}
	return fmt.Sprint(s.value)
}

// Filter 伙伴筛选条件，四个条件相与
type Filter struct {
	Subject Selector[int]
	Role    Selector[models.SubjectRole]
	Method  Selector[models.StudyMethod]
	Style   Selector[models.LearningStyle]
}

// Effective 返回实际生效的筛选条件：未指定科目时忽略角色条件
func (f Filter) Effective() Filter {
	if f.Subject.IsAny() {
		f.Role = Any[models.SubjectRole]()
	}
	return f
}

// Key 生成规范化的缓存键
func (f Filter) Key() string {
	e := f.Effective()
	return strings.Join([]string{e.Subject.String(), e.Role.String(), e.Method.String(), e.Style.String()}, "|")
}

// ParseFilter 解析查询参数，空字符串或 "any" 表示不限，无法识别的取值返回错误
func ParseFilter(subject, role, method, style string) (Filter, error) {
	var f Filter
	subject = strings.TrimSpace(subject)
	role = strings.TrimSpace(role)
	method = strings.TrimSpace(method)
	style = strings.TrimSpace(style)

	if !isAny(subject) {
		id, err := strconv.Atoi(subject)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: 无效的科目 %q", models.ErrInvalidEnum, subject)
		}
		f.Subject = Only(id)
	}
	if !isAny(role) {
		r, err := models.ParseSubjectRole(role)
		if err != nil {
			return Filter{}, err
		}
		f.Role = Only(r)
	}
	if !isAny(method) {
		m, err := models.ParseStudyMethod(method)
		if err != nil {
			return Filter{}, err
		}
		f.Method = Only(m)
	}
	if !isAny(style) {
		s, err := models.ParseLearningStyle(style)
		if err != nil {
			return Filter{}, err
		}
		f.Style = Only(s)
	}
	return f, nil
}

func isAny(s string) bool {
	return s == "" || strings.EqualFold(s, AnyValue)
}
