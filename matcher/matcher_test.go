package matcher

import (
	"reflect"
	"testing"

	"studysphere/models"
)

func user(id int, p models.Profile) models.User {
	return models.User{ID: id, Name: "u", Profile: p}
}

// 请求者需要 Maths(3)，能帮助 Physics(1)
func requester() models.User {
	return user(1, models.Profile{
		LearningStyle:    models.Visual,
		PreferredMethods: []models.StudyMethod{models.ProblemSolving, models.Discussion},
		Availability:     []string{"Evenings", "Weekends"},
		Subjects: []models.UserSubjectInterest{
			{SubjectID: 3, Role: models.NeedsHelp},
			{SubjectID: 1, Role: models.CanHelp},
		},
	})
}

func TestRankScenario(t *testing.T) {
	a := user(2, models.Profile{
		LearningStyle:    models.Kinesthetic,
		PreferredMethods: []models.StudyMethod{models.ProblemSolving},
		Availability:     []string{"Evenings", "Weekends", "Mornings"},
		Subjects:         []models.UserSubjectInterest{{SubjectID: 3, Role: models.CanHelp}},
	})
	b := user(3, models.Profile{
		LearningStyle:    models.Auditory,
		PreferredMethods: []models.StudyMethod{models.Flashcards},
		Availability:     []string{"Afternoons"},
		Subjects:         []models.UserSubjectInterest{{SubjectID: 1, Role: models.NeedsHelp}},
	})

	r := requester()
	if got := Score(r.Profile, a.Profile); got != 15 {
		t.Fatalf("expected score 15 for A, got %d", got)
	}
	if got := Score(r.Profile, b.Profile); got != 5 {
		t.Fatalf("expected score 5 for B, got %d", got)
	}

	ranked := Rank(r, []models.User{b, r, a}, Filter{})
	if len(ranked) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(ranked))
	}
	if ranked[0].User.ID != 2 || ranked[1].User.ID != 3 {
		t.Fatalf("expected order [A, B], got [%d, %d]", ranked[0].User.ID, ranked[1].User.ID)
	}
	want := Breakdown{SuppliesNeed: 10, NeedsSupply: 0, Availability: 4, Methods: 1}
	if ranked[0].Breakdown != want {
		t.Fatalf("expected breakdown %+v, got %+v", want, ranked[0].Breakdown)
	}
}

func TestRankEmptyPool(t *testing.T) {
	ranked := Rank(requester(), nil, Filter{})
	if ranked == nil || len(ranked) != 0 {
		t.Fatalf("expected empty non-nil result, got %v", ranked)
	}
	if got := Rank(requester(), []models.User{requester()}, Filter{}); len(got) != 0 {
		t.Fatalf("expected self-only pool to yield nothing, got %v", got)
	}
}

func TestFilterAllAnyExcludesOnlySelf(t *testing.T) {
	r := requester()
	pool := []models.User{
		user(5, models.Profile{}),
		r,
		user(4, models.Profile{LearningStyle: models.Auditory}),
		user(9, models.Profile{Subjects: []models.UserSubjectInterest{{SubjectID: 2, Role: models.CanHelp}}}),
	}
	got := FilterPool(r, pool, Filter{})
	if len(got) != 3 {
		t.Fatalf("expected 3 users, got %d", len(got))
	}
	for i, id := range []int{5, 4, 9} {
		if got[i].ID != id {
			t.Fatalf("expected pool order to be kept, got %d at %d", got[i].ID, i)
		}
	}
}

func TestFilterCriteria(t *testing.T) {
	r := requester()
	helper := user(2, models.Profile{
		LearningStyle:    models.Visual,
		PreferredMethods: []models.StudyMethod{models.Flashcards},
		Subjects:         []models.UserSubjectInterest{{SubjectID: 3, Role: models.CanHelp}},
	})
	learner := user(3, models.Profile{
		LearningStyle:    models.Auditory,
		PreferredMethods: []models.StudyMethod{models.Discussion},
		Subjects:         []models.UserSubjectInterest{{SubjectID: 3, Role: models.NeedsHelp}},
	})
	other := user(4, models.Profile{
		LearningStyle: models.Visual,
		Subjects:      []models.UserSubjectInterest{{SubjectID: 6, Role: models.CanHelp}},
	})
	pool := []models.User{helper, learner, other}

	cases := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{"subject", Filter{Subject: Only(3)}, []int{2, 3}},
		{"subject and role", Filter{Subject: Only(3), Role: Only(models.CanHelp)}, []int{2}},
		{"method", Filter{Method: Only(models.Discussion)}, []int{3}},
		{"style", Filter{Style: Only(models.Visual)}, []int{2, 4}},
		{"combined", Filter{Subject: Only(3), Style: Only(models.Visual)}, []int{2}},
		{"no match", Filter{Subject: Only(8)}, []int{}},
	}
	for _, c := range cases {
		got := ids(FilterPool(r, pool, c.filter))
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestRoleWithoutSubjectIsIgnored(t *testing.T) {
	r := requester()
	pool := []models.User{
		user(2, models.Profile{Subjects: []models.UserSubjectInterest{{SubjectID: 3, Role: models.CanHelp}}}),
		user(3, models.Profile{Subjects: []models.UserSubjectInterest{{SubjectID: 3, Role: models.NeedsHelp}}}),
		user(4, models.Profile{}),
	}
	withRole := FilterPool(r, pool, Filter{Role: Only(models.CanHelp)})
	anyRole := FilterPool(r, pool, Filter{})
	if !reflect.DeepEqual(ids(withRole), ids(anyRole)) {
		t.Fatalf("expected dangling role to be ignored, got %v vs %v", ids(withRole), ids(anyRole))
	}
	if (Filter{Role: Only(models.CanHelp)}).Key() != (Filter{}).Key() {
		t.Fatalf("expected dangling role to be dropped from the cache key")
	}
}

func TestScoreIsPureAndNonNegative(t *testing.T) {
	r := requester()
	c := user(2, models.Profile{
		Availability: []string{"Evenings"},
		Subjects:     []models.UserSubjectInterest{{SubjectID: 3, Role: models.CanHelp}},
	})
	first := Score(r.Profile, c.Profile)
	second := Score(r.Profile, c.Profile)
	if first != second {
		t.Fatalf("expected identical scores, got %d and %d", first, second)
	}
	if first < 0 {
		t.Fatalf("expected non-negative score, got %d", first)
	}
	if got := Score(models.Profile{}, c.Profile); got != 0 {
		t.Fatalf("expected zero score against an empty profile, got %d", got)
	}
}

func TestScoreMonotonic(t *testing.T) {
	r := requester()
	c := models.Profile{}
	base := Score(r.Profile, c)

	steps := []func(p models.Profile) models.Profile{
		func(p models.Profile) models.Profile {
			p.Subjects = append(p.Subjects, models.UserSubjectInterest{SubjectID: 3, Role: models.CanHelp})
			return p
		},
		func(p models.Profile) models.Profile {
			p.Subjects = append(p.Subjects, models.UserSubjectInterest{SubjectID: 1, Role: models.NeedsHelp})
			return p
		},
		func(p models.Profile) models.Profile {
			p.Availability = append(p.Availability, "Weekends")
			return p
		},
		func(p models.Profile) models.Profile {
			p.PreferredMethods = append(p.PreferredMethods, models.Discussion)
			return p
		},
		func(p models.Profile) models.Profile {
			p.Availability = append(p.Availability, "Mornings")
			return p
		},
	}
	for i, step := range steps {
		c = step(c)
		next := Score(r.Profile, c)
		if next < base {
			t.Fatalf("step %d: score decreased from %d to %d", i, base, next)
		}
		base = next
	}
	if base != 10+5+2+1 {
		t.Fatalf("expected final score 18, got %d", base)
	}
}

func TestRankTieBreakAndStability(t *testing.T) {
	r := requester()
	p := models.Profile{Availability: []string{"Evenings"}}
	pool := []models.User{user(7, p), user(3, p), user(5, p)}

	ranked := Rank(r, pool, Filter{})
	if got := matchIDs(ranked); !reflect.DeepEqual(got, []int{3, 5, 7}) {
		t.Fatalf("expected ties ordered by id, got %v", got)
	}

	resorted := make([]models.User, 0, len(ranked))
	for _, m := range ranked {
		resorted = append(resorted, m.User)
	}
	again := Rank(r, resorted, Filter{})
	if !reflect.DeepEqual(matchIDs(ranked), matchIDs(again)) {
		t.Fatalf("expected re-ranking a ranked list to be a no-op, got %v", matchIDs(again))
	}
}

func TestBestMatch(t *testing.T) {
	r := requester()
	c := models.Profile{Subjects: []models.UserSubjectInterest{
		{SubjectID: 1, Role: models.CanHelp},
		{SubjectID: 3, Role: models.CanHelp},
	}}
	id, ok := BestMatch(r.Profile, c)
	if !ok || id != 3 {
		t.Fatalf("expected best match on subject 3, got %d %v", id, ok)
	}
	if _, ok := BestMatch(r.Profile, models.Profile{}); ok {
		t.Fatalf("expected no best match")
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("3", "Can Help", "any", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id, ok := f.Subject.Value(); !ok || id != 3 {
		t.Fatalf("expected subject 3, got %v", f.Subject)
	}
	if !f.Method.IsAny() || !f.Style.IsAny() {
		t.Fatalf("expected method and style to be any")
	}
	if f.Key() != "3|Can Help|any|any" {
		t.Fatalf("unexpected key %q", f.Key())
	}

	f, err = ParseFilter(" 3 ", " Can Help ", "\tFlashcards", " any ")
	if err != nil {
		t.Fatalf("expected surrounding whitespace ignored, got %v", err)
	}
	if r, ok := f.Role.Value(); !ok || r != models.CanHelp {
		t.Fatalf("expected role Can Help, got %v", f.Role)
	}
	if m, ok := f.Method.Value(); !ok || m != models.Flashcards {
		t.Fatalf("expected method Flashcards, got %v", f.Method)
	}

	for _, bad := range [][4]string{
		{"maths", "", "", ""},
		{"", "Helper", "", ""},
		{"", "", "Osmosis", ""},
		{"", "", "", "Telepathic"},
	} {
		if _, err := ParseFilter(bad[0], bad[1], bad[2], bad[3]); err == nil {
			t.Fatalf("expected error for %v", bad)
		}
	}
}

func ids(users []models.User) []int {
	out := []int{}
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func matchIDs(matches []Match) []int {
	out := []int{}
	for _, m := range matches {
		out = append(out, m.User.ID)
	}
	return out
}
