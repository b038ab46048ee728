package models

import "fmt"

// ApplyInterest 在科目角色集合上应用一次选择，返回新的集合，不修改 current。
//   - 该科目尚未选择：追加
//   - 已选择但角色不同：替换角色
//   - 重复选择相同角色：移除
func ApplyInterest(current []UserSubjectInterest, subjectID int, role SubjectRole) []UserSubjectInterest {
	idx := -1
	for i, s := range current {
		if s.SubjectID == subjectID {
			idx = i
			break
		}
	}

	next := make([]UserSubjectInterest, 0, len(current)+1)
	switch {
	case idx < 0:
		next = append(next, current...)
		next = append(next, UserSubjectInterest{SubjectID: subjectID, Role: role})
	case current[idx].Role == role:
		next = append(next, current[:idx]...)
		next = append(next, current[idx+1:]...)
	default:
		next = append(next, current...)
		next[idx].Role = role
	}
	return next
}

// ToggleMethod 切换学习方式：存在则移除，不存在则追加
func ToggleMethod(current []StudyMethod, method StudyMethod) []StudyMethod {
	return toggle(current, method)
}

// ToggleSlot 切换空闲时段：存在则移除，不存在则追加
func ToggleSlot(current []string, slot string) []string {
	return toggle(current, slot)
}

func toggle[T comparable](current []T, v T) []T {
	next := make([]T, 0, len(current)+1)
	found := false
	for _, c := range current {
		if c == v {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		next = append(next, v)
	}
	return next
}

// SubjectsWithRole 返回指定角色的科目ID集合
func (p Profile) SubjectsWithRole(role SubjectRole) map[int]struct{} {
	ids := make(map[int]struct{})
	for _, s := range p.Subjects {
		if s.Role == role {
			ids[s.SubjectID] = struct{}{}
		}
	}
	return ids
}

// HasSubject 判断是否选择了某个科目（任意角色）
func (p Profile) HasSubject(subjectID int) bool {
	for _, s := range p.Subjects {
		if s.SubjectID == subjectID {
			return true
		}
	}
	return false
}

// HasInterest 判断是否以指定角色选择了某个科目
func (p Profile) HasInterest(subjectID int, role SubjectRole) bool {
	for _, s := range p.Subjects {
		if s.SubjectID == subjectID && s.Role == role {
			return true
		}
	}
	return false
}

// HasMethod 判断是否偏好某种学习方式
func (p Profile) HasMethod(method StudyMethod) bool {
	for _, m := range p.PreferredMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Validate 校验档案：科目必须在目录中且每个科目只出现一次，枚举和时段必须有效
func (p Profile) Validate() error {
	if p.LearningStyle != "" {
		if _, err := ParseLearningStyle(string(p.LearningStyle)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
	}

	seenMethods := make(map[StudyMethod]bool)
	for _, m := range p.PreferredMethods {
		if _, err := ParseStudyMethod(string(m)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		if seenMethods[m] {
			return fmt.Errorf("%w: 学习方式重复 %q", ErrInvalidProfile, m)
		}
		seenMethods[m] = true
	}

	seenSlots := make(map[string]bool)
	for _, slot := range p.Availability {
		if !IsKnownSlot(slot) {
			return fmt.Errorf("%w: 未知的时段 %q", ErrInvalidProfile, slot)
		}
		if seenSlots[slot] {
			return fmt.Errorf("%w: 时段重复 %q", ErrInvalidProfile, slot)
		}
		seenSlots[slot] = true
	}

	seenSubjects := make(map[int]bool)
	for _, s := range p.Subjects {
		if !SubjectExists(s.SubjectID) {
			return fmt.Errorf("%w: 科目不存在 %d", ErrInvalidProfile, s.SubjectID)
		}
		if _, err := ParseSubjectRole(string(s.Role)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		if seenSubjects[s.SubjectID] {
			return fmt.Errorf("%w: 科目重复 %d", ErrInvalidProfile, s.SubjectID)
		}
		seenSubjects[s.SubjectID] = true
	}
	return nil
}
