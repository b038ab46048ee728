package services

import (
	"context"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"studysphere/models"
)

// SeedDemoData 数据库没有用户时写入演示数据
func SeedDemoData(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("数据库为空，写入演示数据...")
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(demoUsers()).Error; err != nil {
			return err
		}
		if err := tx.Create(demoGroups()).Error; err != nil {
			return err
		}
		return tx.Create(demoMessages()).Error
	})
}

func demoUsers() []models.User {
	interest := func(subjectID int, role models.SubjectRole) models.UserSubjectInterest {
		return models.UserSubjectInterest{SubjectID: subjectID, Role: role}
	}
	return []models.User{
		{
			ID: 1, Name: "Aisha Sharma", Email: "aisha@school.edu",
			AvatarURL: "https://picsum.photos/seed/aisha/200",
			Profile: models.Profile{
				Bio:              "Physics enthusiast, aiming for IIT. Looking for a serious study group for Maths.",
				LearningStyle:    models.Visual,
				PreferredMethods: []models.StudyMethod{models.ProblemSolving, models.Discussion},
				Availability:     []string{"Evenings", "Weekends"},
				Subjects: []models.UserSubjectInterest{
					interest(3, models.NeedsHelp), interest(1, models.CanHelp), interest(2, models.CanHelp),
				},
			},
		},
		{
			ID: 2, Name: "Rohan Verma", Email: "rohan@school.edu",
			AvatarURL: "https://picsum.photos/seed/rohan/200",
			Profile: models.Profile{
				Bio:              "Future software engineer. I learn best by coding and explaining concepts to others.",
				LearningStyle:    models.Kinesthetic,
				PreferredMethods: []models.StudyMethod{models.ProblemSolving, models.QuietReview},
				Availability:     []string{"Afternoons", "Weekends"},
				Subjects: []models.UserSubjectInterest{
					interest(5, models.NeedsHelp), interest(1, models.CanHelp), interest(8, models.NeedsHelp),
				},
			},
		},
		{
			ID: 3, Name: "Priya Patel", Email: "priya@school.edu",
			AvatarURL: "https://picsum.photos/seed/priya/200",
			Profile: models.Profile{
				Bio:              "Commerce student who enjoys debates. I can help with theory subjects.",
				LearningStyle:    models.ReadingWriting,
				PreferredMethods: []models.StudyMethod{models.Discussion, models.Flashcards},
				Availability:     []string{"Mornings", "Evenings"},
				Subjects: []models.UserSubjectInterest{
					interest(7, models.CanHelp), interest(6, models.CanHelp), interest(2, models.NeedsHelp),
				},
			},
		},
		{
			ID: 4, Name: "Vikram Singh", Email: "vikram@school.edu",
			AvatarURL: "https://picsum.photos/seed/vikram/200",
			Profile: models.Profile{
				Bio:              "Science & Math whiz. I believe in grinding through problems until they make sense. Trying to get into coding.",
				LearningStyle:    models.Visual,
				PreferredMethods: []models.StudyMethod{models.ProblemSolving},
				Availability:     []string{"Afternoons", "Evenings", "Weekends"},
				Subjects: []models.UserSubjectInterest{
					interest(1, models.CanHelp), interest(2, models.CanHelp), interest(3, models.CanHelp), interest(5, models.NeedsHelp),
				},
			},
		},
	}
}

func demoGroups() []models.Group {
	mathsNotes := "Trigonometry Formulas:\n\nsin(A + B) = sinA cosB + cosA sinB\ncos(A + B) = cosA cosB - sinA sinB\n\n" +
		"Key areas to review:\n- Integration by parts\n- Probability theorems\n- 3D Geometry"
	englishNotes := "Figure of Speech practice:\n\n- Metaphor vs Simile\n- Alliteration examples\n- Personification in \"The Brook\"\n\n" +
		"Next topic: Shakespeare's Sonnets"
	return []models.Group{
		{
			ID: 101, Name: "Maths Masters", SubjectID: 3,
			Members:          datatypes.NewJSONSlice([]int{1, 4}),
			WorkspaceContent: models.WorkspaceContent{Scratchpad: mathsNotes},
		},
		{
			ID: 102, Name: "English Lit Circle", SubjectID: 6,
			Members:          datatypes.NewJSONSlice([]int{2, 3}),
			WorkspaceContent: models.WorkspaceContent{Scratchpad: englishNotes},
		},
	}
}

func demoMessages() []models.Message {
	at := func(hour, minute int) time.Time {
		return time.Date(2023, time.October, 27, hour, minute, 0, 0, time.UTC)
	}
	return []models.Message{
		{ID: "seed-1", SenderID: 3, ReceiverID: 4, Timestamp: at(10, 0),
			Text: "Hey Vikram! I saw you can help with Chemistry. I'm struggling with reaction mechanisms. Want to form a study group?"},
		{ID: "seed-2", SenderID: 4, ReceiverID: 3, Timestamp: at(10, 5),
			Text: "Hi Priya! Absolutely. I'm always down to solve some chem problems. When are you free?"},
		{ID: "seed-3", SenderID: 1, ReceiverID: 4, Timestamp: at(10, 6),
			Text: "Hi Vikram, I saw you're a whiz at Maths. I could use a partner for tackling some tough integration problems. Interested?"},
		{ID: "seed-4", SenderID: 2, ReceiverID: 1, Timestamp: at(11, 0),
			Text: "Hey Aisha, great notes on electromagnetism! We should totally form a group to solve physics problems faster."},
	}
}
