package rbac

import (
	"context"
	"testing"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "attempt:create", true},
		{"student", "attempt:view-own", true},
		{"student", "attempt:view-all", false},
		{"student", "progress:reset", false},
		{"student", "content:upsert", false},
		{"admin", "attempt:view-all", true},
		{"admin", "progress:reset", true},
		{"", "attempt:create", false},
		{"nobody", "attempt:create", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{
		"grader": {"attempt:*", "progress:view-all"},
	})
	if !c.Has("grader", "attempt:view-all") {
		t.Error("attempt:* should cover attempt:view-all")
	}
	if !c.Has("grader", "attempt:submit") {
		t.Error("attempt:* should cover attempt:submit")
	}
	if c.Has("grader", "content:upsert") {
		t.Error("attempt:* must not cover content:upsert")
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "attempt:view-own", "attempt:view-all") {
		t.Error("student should pass when one of the alternatives matches")
	}
	if c.Any("student", "progress:reset", "sync:events") {
		t.Error("student should fail when none match")
	}
}

func TestContextSubjectAndRole(t *testing.T) {
	ctx := context.Background()
	if RoleFromContext(ctx) != "" || SubjectFromContext(ctx) != "" {
		t.Fatal("empty context should yield empty identity")
	}
	ctx = WithSubject(WithRole(ctx, "student"), "u1")
	if got := RoleFromContext(ctx); got != "student" {
		t.Errorf("role = %q", got)
	}
	if got := SubjectFromContext(ctx); got != "u1" {
		t.Errorf("subject = %q", got)
	}
}
