package models

import (
	"fmt"
	"time"
)

// SubjectRole 用户在某个科目上的角色
type SubjectRole string

const (
	NeedsHelp SubjectRole = "Needs Help" // 需要帮助
	CanHelp   SubjectRole = "Can Help"   // 可以提供帮助
)

// LearningStyle 学习风格
type LearningStyle string

const (
	Visual         LearningStyle = "Visual"
	Auditory       LearningStyle = "Auditory"
	Kinesthetic    LearningStyle = "Kinesthetic"
	ReadingWriting LearningStyle = "Reading/Writing"
)

// StudyMethod 学习方式
type StudyMethod string

const (
	Discussion     StudyMethod = "Discussion"
	ProblemSolving StudyMethod = "Problem-Solving"
	QuietReview    StudyMethod = "Quiet Review"
	Flashcards     StudyMethod = "Flashcards"
)

// AllLearningStyles 全部学习风格
var AllLearningStyles = []LearningStyle{Visual, Auditory, Kinesthetic, ReadingWriting}

// AllStudyMethods 全部学习方式
var AllStudyMethods = []StudyMethod{Discussion, ProblemSolving, QuietReview, Flashcards}

// ParseSubjectRole 解析科目角色
func ParseSubjectRole(s string) (SubjectRole, error) {
	switch SubjectRole(s) {
	case NeedsHelp, CanHelp:
		return SubjectRole(s), nil
	}
	return "", fmt.Errorf("%w: 未知的科目角色 %q", ErrInvalidEnum, s)
}

// ParseLearningStyle 解析学习风格
func ParseLearningStyle(s string) (LearningStyle, error) {
	for _, v := range AllLearningStyles {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: 未知的学习风格 %q", ErrInvalidEnum, s)
}

// ParseStudyMethod 解析学习方式
func ParseStudyMethod(s string) (StudyMethod, error) {
	for _, v := range AllStudyMethods {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: 未知的学习方式 %q", ErrInvalidEnum, s)
}

// UserSubjectInterest 用户对某个科目的需求或供给
type UserSubjectInterest struct {
	SubjectID int         `json:"subjectId"`
	Role      SubjectRole `json:"role"`
}

// Profile 用户学习档案
type Profile struct {
	Bio              string                `json:"bio"`
	LearningStyle    LearningStyle         `json:"learningStyle"`
	PreferredMethods []StudyMethod         `json:"preferredMethods"`
	Availability     []string              `json:"availability"`
	Subjects         []UserSubjectInterest `json:"subjects"`
}

// User 用户模型
type User struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl"`
	Profile   Profile   `json:"profile" gorm:"type:text;serializer:json"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
