package models

import (
	"errors"
	"testing"
)

func TestApplyInterestAdd(t *testing.T) {
	current := []UserSubjectInterest{{SubjectID: 1, Role: CanHelp}}
	next := ApplyInterest(current, 3, NeedsHelp)

	if len(next) != 2 {
		t.Fatalf("expected 2 interests, got %d", len(next))
	}
	if next[1] != (UserSubjectInterest{SubjectID: 3, Role: NeedsHelp}) {
		t.Fatalf("expected appended Maths/NeedsHelp, got %+v", next[1])
	}
	if len(current) != 1 {
		t.Fatalf("expected input to be untouched, got %+v", current)
	}
}

func TestApplyInterestReplace(t *testing.T) {
	current := []UserSubjectInterest{
		{SubjectID: 1, Role: CanHelp},
		{SubjectID: 3, Role: NeedsHelp},
	}
	next := ApplyInterest(current, 3, CanHelp)

	if len(next) != 2 {
		t.Fatalf("expected 2 interests, got %d", len(next))
	}
	if next[1].Role != CanHelp {
		t.Fatalf("expected role to switch to CanHelp, got %s", next[1].Role)
	}
	if current[1].Role != NeedsHelp {
		t.Fatalf("expected input to be untouched, got %s", current[1].Role)
	}
}

func TestApplyInterestRemoveOnRepeat(t *testing.T) {
	current := []UserSubjectInterest{
		{SubjectID: 1, Role: CanHelp},
		{SubjectID: 3, Role: NeedsHelp},
		{SubjectID: 5, Role: NeedsHelp},
	}
	next := ApplyInterest(current, 3, NeedsHelp)

	if len(next) != 2 {
		t.Fatalf("expected 2 interests, got %d", len(next))
	}
	for _, s := range next {
		if s.SubjectID == 3 {
			t.Fatalf("expected subject 3 to be removed, got %+v", next)
		}
	}
	if next[0].SubjectID != 1 || next[1].SubjectID != 5 {
		t.Fatalf("expected order to be kept, got %+v", next)
	}
}

func TestApplyInterestKeepsOnePerSubject(t *testing.T) {
	var subjects []UserSubjectInterest
	subjects = ApplyInterest(subjects, 2, NeedsHelp)
	subjects = ApplyInterest(subjects, 2, CanHelp)
	subjects = ApplyInterest(subjects, 4, CanHelp)
	subjects = ApplyInterest(subjects, 2, NeedsHelp)

	count := 0
	for _, s := range subjects {
		if s.SubjectID == 2 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one entry for subject 2, got %d", count)
	}
}

func TestToggleMethodAndSlot(t *testing.T) {
	methods := ToggleMethod([]StudyMethod{Discussion}, Flashcards)
	if len(methods) != 2 {
		t.Fatalf("expected 2 methods, got %v", methods)
	}
	methods = ToggleMethod(methods, Discussion)
	if len(methods) != 1 || methods[0] != Flashcards {
		t.Fatalf("expected only Flashcards, got %v", methods)
	}

	slots := ToggleSlot(nil, "Evenings")
	slots = ToggleSlot(slots, "Evenings")
	if len(slots) != 0 {
		t.Fatalf("expected empty slots, got %v", slots)
	}
}

func TestProfileValidate(t *testing.T) {
	valid := Profile{
		LearningStyle:    Visual,
		PreferredMethods: []StudyMethod{Discussion},
		Availability:     []string{"Evenings"},
		Subjects:         []UserSubjectInterest{{SubjectID: 3, Role: NeedsHelp}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid profile, got %v", err)
	}

	cases := map[string]Profile{
		"unknown subject":   {Subjects: []UserSubjectInterest{{SubjectID: 99, Role: CanHelp}}},
		"duplicate subject": {Subjects: []UserSubjectInterest{{SubjectID: 1, Role: CanHelp}, {SubjectID: 1, Role: NeedsHelp}}},
		"bad role":          {Subjects: []UserSubjectInterest{{SubjectID: 1, Role: "Teaches"}}},
		"bad style":         {LearningStyle: "Osmosis"},
		"bad slot":          {Availability: []string{"Midnight"}},
		"duplicate method":  {PreferredMethods: []StudyMethod{Flashcards, Flashcards}},
	}
	for name, p := range cases {
		if err := p.Validate(); !errors.Is(err, ErrInvalidProfile) {
			t.Fatalf("%s: expected ErrInvalidProfile, got %v", name, err)
		}
	}
}

func TestSubjectName(t *testing.T) {
	if got := SubjectName(3); got != "Maths" {
		t.Fatalf("expected Maths, got %s", got)
	}
	if got := SubjectName(42); got != UnknownSubjectName {
		t.Fatalf("expected fallback %q, got %q", UnknownSubjectName, got)
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseSubjectRole("Can Help"); err != nil {
		t.Fatalf("expected Can Help to parse, got %v", err)
	}
	if _, err := ParseLearningStyle("Reading/Writing"); err != nil {
		t.Fatalf("expected Reading/Writing to parse, got %v", err)
	}
	if _, err := ParseStudyMethod("Problem-Solving"); err != nil {
		t.Fatalf("expected Problem-Solving to parse, got %v", err)
	}
	if _, err := ParseStudyMethod("any"); !errors.Is(err, ErrInvalidEnum) {
		t.Fatalf("expected ErrInvalidEnum, got %v", err)
	}
}
