package models

// Subject 科目
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UnknownSubjectName 科目不在目录中时的展示名称
const UnknownSubjectName = "Unknown"

// AllSubjects 科目目录，运行期间不会改变
var AllSubjects = []Subject{
	{ID: 1, Name: "Physics"},
	{ID: 2, Name: "Chemistry"},
	{ID: 3, Name: "Maths"},
	{ID: 4, Name: "Biology"},
	{ID: 5, Name: "Computer Science"},
	{ID: 6, Name: "English"},
	{ID: 7, Name: "Commerce"},
	{ID: 8, Name: "Business Studies"},
}

// AllAvailability 可选的空闲时段
var AllAvailability = []string{"Mornings", "Afternoons", "Evenings", "Weekends"}

// SubjectExists 判断科目是否在目录中
func SubjectExists(id int) bool {
	for _, s := range AllSubjects {
		if s.ID == id {
			return true
		}
	}
	return false
}

// SubjectName 获取科目名称，找不到时返回 "Unknown"
func SubjectName(id int) string {
	for _, s := range AllSubjects {
		if s.ID == id {
			return s.Name
		}
	}
	return UnknownSubjectName
}

// IsKnownSlot 判断时段标签是否有效
func IsKnownSlot(slot string) bool {
	for _, s := range AllAvailability {
		if s == slot {
			return true
		}
	}
	return false
}
