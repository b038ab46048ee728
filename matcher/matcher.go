// Package matcher 学习伙伴筛选与排序。纯函数，不持有状态，调用方负责提供一致的快照。
package matcher

import (
	"cmp"
	"slices"

	"studysphere/models"
)

// 评分权重
const (
	SuppliesNeedPoints = 10 // 对方能帮助我需要的科目
	NeedsSupplyPoints  = 5  // 我能帮助对方需要的科目
	SlotPoints         = 2  // 每个共同空闲时段
	MethodPoints       = 1  // 每个共同学习方式
)

// Breakdown 各项得分
type Breakdown struct {
	SuppliesNeed int `json:"suppliesNeed"`
	NeedsSupply  int `json:"needsSupply"`
	Availability int `json:"availability"`
	Methods      int `json:"methods"`
}

// Total 总分
func (b Breakdown) Total() int {
	return b.SuppliesNeed + b.NeedsSupply + b.Availability + b.Methods
}

// Match 排序结果中的一个候选人
type Match struct {
	User      models.User `json:"user"`
	Score     int         `json:"score"`
	Breakdown Breakdown   `json:"breakdown"`
}

// Passes 判断候选人是否满足筛选条件
func Passes(candidate models.Profile, f Filter) bool {
	f = f.Effective()

	if subjectID, ok := f.Subject.Value(); ok {
		if !candidate.HasSubject(subjectID) {
			return false
		}
		if role, ok := f.Role.Value(); ok && !candidate.HasInterest(subjectID, role) {
			return false
		}
	}
	if method, ok := f.Method.Value(); ok && !candidate.HasMethod(method) {
		return false
	}
	return f.Style.Matches(candidate.LearningStyle)
}

// FilterPool 排除请求者本人并应用筛选条件，保持原有顺序
func FilterPool(requester models.User, pool []models.User, f Filter) []models.User {
	out := make([]models.User, 0, len(pool))
	for _, u := range pool {
		if u.ID == requester.ID {
			continue
		}
		if Passes(u.Profile, f) {
			out = append(out, u)
		}
	}
	return out
}

// Explain 计算候选人相对请求者的各项得分
func Explain(requester, candidate models.Profile) Breakdown {
	needs := requester.SubjectsWithRole(models.NeedsHelp)
	offers := requester.SubjectsWithRole(models.CanHelp)

	var b Breakdown
	for _, s := range candidate.Subjects {
		switch s.Role {
		case models.CanHelp:
			if _, ok := needs[s.SubjectID]; ok {
				b.SuppliesNeed += SuppliesNeedPoints
			}
		case models.NeedsHelp:
			if _, ok := offers[s.SubjectID]; ok {
				b.NeedsSupply += NeedsSupplyPoints
			}
		}
	}

	b.Availability = SlotPoints * countShared(candidate.Availability, requester.Availability)
	b.Methods = MethodPoints * countShared(candidate.PreferredMethods, requester.PreferredMethods)
	return b
}

// Score 候选人相对请求者的兼容度
func Score(requester, candidate models.Profile) int {
	return Explain(requester, candidate).Total()
}

// Rank 筛选、评分并排序：分数降序，同分按用户ID升序
func Rank(requester models.User, pool []models.User, f Filter) []Match {
	candidates := FilterPool(requester, pool, f)

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		b := Explain(requester.Profile, c.Profile)
		matches = append(matches, Match{User: c, Score: b.Total(), Breakdown: b})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.User.ID, b.User.ID)
	})
	return matches
}

// BestMatch 返回请求者需要帮助、且候选人可以提供帮助的第一个科目
func BestMatch(requester, candidate models.Profile) (int, bool) {
	for _, mine := range requester.Subjects {
		if mine.Role != models.NeedsHelp {
			continue
		}
		if candidate.HasInterest(mine.SubjectID, models.CanHelp) {
			return mine.SubjectID, true
		}
	}
	return 0, false
}

// countShared 统计 a 中出现在 b 里的不同元素个数
func countShared[T comparable](a, b []T) int {
	set := make(map[T]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	n := 0
	for _, v := range a {
		if _, ok := set[v]; ok {
			n++
			delete(set, v)
		}
	}
	return n
}
