package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"studysphere/models"
)

func strPointer(s string) *string { return &s }
func intPointer(i int) *int       { return &i }

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSaveGroupCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	tests := []struct {
		name string
		upd  GroupUpdate
	}{
		{"missing name", GroupUpdate{SubjectID: intPointer(3), Members: []int{1}}},
		{"missing subject", GroupUpdate{Name: "G", Members: []int{1}}},
		{"unknown subject", GroupUpdate{Name: "G", SubjectID: intPointer(42), Members: []int{1}}},
		{"no members", GroupUpdate{Name: "G", SubjectID: intPointer(3)}},
		{"unknown member", GroupUpdate{Name: "G", SubjectID: intPointer(3), Members: []int{1, 99}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.groups.SaveGroup(ctx, 500, 1, tt.upd); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSaveGroupCreateAndMerge(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	g, err := env.groups.SaveGroup(ctx, 200, 3, GroupUpdate{
		Name:      "Chem Crew",
		SubjectID: intPointer(2),
		Members:   []int{3, 4, 3},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(g.Members) != 2 {
		t.Fatalf("expected duplicate members dropped, got %v", g.Members)
	}

	g, err = env.groups.SaveGroup(ctx, 200, 4, GroupUpdate{
		Workspace: &models.WorkspacePatch{Scratchpad: strPointer("balance equations")},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if g.Name != "Chem Crew" || g.SubjectID != 2 {
		t.Fatalf("expected name and subject kept, got %+v", g)
	}

	stored, err := env.groups.GetGroupByID(ctx, 200)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.WorkspaceContent.Scratchpad != "balance equations" {
		t.Fatalf("expected scratchpad persisted, got %q", stored.WorkspaceContent.Scratchpad)
	}
	if !stored.HasMember(3) || !stored.HasMember(4) {
		t.Fatalf("expected members persisted, got %v", stored.Members)
	}
}

func TestSaveGroupExistingMembersOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	// 101 Maths Masters 的成员是 1 和 4
	_, err := env.groups.SaveGroup(ctx, 101, 2, GroupUpdate{Name: "Hijacked", Members: []int{2}})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-member, got %v", err)
	}
	stored, err := env.groups.GetGroupByID(ctx, 101)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Name != "Maths Masters" || !stored.HasMember(1) || stored.HasMember(2) {
		t.Fatalf("expected group untouched, got %+v", stored)
	}

	g, err := env.groups.SaveGroup(ctx, 101, 4, GroupUpdate{Members: []int{1, 4, 2}})
	if err != nil {
		t.Fatalf("member update: %v", err)
	}
	if !g.HasMember(2) {
		t.Fatalf("expected member added, got %v", g.Members)
	}
}

func TestGetGroupsForUser(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	groups, err := env.groups.GetGroupsForUser(context.Background(), 4)
	if err != nil {
		t.Fatalf("get groups: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != 101 {
		t.Fatalf("expected only Maths Masters, got %+v", groups)
	}
}

func TestGetGroupResponse(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	resp, err := env.groups.GetGroupResponse(context.Background(), 102)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.SubjectName != "English" {
		t.Fatalf("expected English, got %q", resp.SubjectName)
	}
	if len(resp.MemberDetails) != 2 || resp.MemberDetails[0].Name != "Rohan Verma" {
		t.Fatalf("expected member details, got %+v", resp.MemberDetails)
	}

	if _, err := env.groups.GetGroupResponse(context.Background(), 999); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestUpdateWorkspaceMembersOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	patch := models.WorkspacePatch{Scratchpad: strPointer("new notes")}
	if _, err := env.groups.UpdateWorkspace(ctx, 101, 2, patch); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-member, got %v", err)
	}
	if _, err := env.groups.UpdateWorkspace(ctx, 999, 1, patch); !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}

	g, err := env.groups.UpdateWorkspace(ctx, 101, 1, patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if g.WorkspaceContent.Scratchpad != "new notes" {
		t.Fatalf("expected scratchpad updated, got %q", g.WorkspaceContent.Scratchpad)
	}
	if types := env.notifier.types(); len(types) != 1 || types[0] != EventGroupsChanged {
		t.Fatalf("expected one groups_changed event, got %v", types)
	}
}

func TestUpdateWorkspaceWhiteboard(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	g, err := env.groups.UpdateWorkspace(ctx, 101, 4, models.WorkspacePatch{Whiteboard: strPointer(pngDataURL(t, 200, 100))})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if g.WorkspaceContent.Whiteboard == nil {
		t.Fatalf("expected whiteboard stored")
	}
	if g.WorkspaceContent.Scratchpad == "" {
		t.Fatalf("expected scratchpad untouched by whiteboard patch")
	}

	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(*g.WorkspaceContent.Whiteboard, "data:image/png;base64,"))
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode stored whiteboard: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 32 {
		t.Fatalf("expected 64x32 after fit, got %dx%d", cfg.Width, cfg.Height)
	}

	g, err = env.groups.UpdateWorkspace(ctx, 101, 4, models.WorkspacePatch{Whiteboard: strPointer("")})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if g.WorkspaceContent.Whiteboard != nil {
		t.Fatalf("expected whiteboard cleared")
	}

	_, err = env.groups.UpdateWorkspace(ctx, 101, 4, models.WorkspacePatch{Whiteboard: strPointer("not-a-data-url")})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestNormalizeWhiteboardKeepsSmallImage(t *testing.T) {
	out, err := NormalizeWhiteboard(pngDataURL(t, 10, 5), 64, 64)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/png;base64,"))
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 10 || cfg.Height != 5 {
		t.Fatalf("expected 10x5, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSetStudyPlanReplacesPlan(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	plan := &models.StudyPlan{Plan: []models.StudyPlanDay{
		{Day: 1, Goal: "Limits", Concepts: []string{"epsilon-delta"}, Activities: []string{"worksheet"}},
	}}
	if _, err := env.groups.SetStudyPlan(context.Background(), 101, 1, plan); err != nil {
		t.Fatalf("set plan: %v", err)
	}

	stored, _ := env.groups.GetGroupByID(context.Background(), 101)
	if stored.WorkspaceContent.StudyPlan == nil || stored.WorkspaceContent.StudyPlan.Plan[0].Goal != "Limits" {
		t.Fatalf("expected plan persisted, got %+v", stored.WorkspaceContent.StudyPlan)
	}
}
