package authz

import "testing"

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, required string
		want              bool
	}{
		{"*:*", "book:delete", true},
		{"*", "anything", true},
		{"book:*", "book:create", true},
		{"*:read", "order:read", true},
		{"book:read", "book:read", true},
		{"book:read", "book:update", false},
		{"book:*", "order:read", false},
		{"admin", "admin", true},
		{"admin", "book:read", false},
	}
	for _, tc := range tests {
		if got := MatchPattern(tc.pattern, tc.required); got != tc.want {
			t.Errorf("MatchPattern(%q, %q) = %v, want %v", tc.pattern, tc.required, got, tc.want)
		}
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		role, perm string
		want       bool
	}{
		{RoleAdmin, "user:delete", true},
		{RoleAdmin, "order:update", true},
		{RoleUser, "book:read", true},
		{RoleUser, "profile:update", true},
		{RoleUser, "order:create", true},
		{RoleUser, "order:update", false},
		{RoleUser, "book:create", false},
		{RoleUser, "user:read", false},
		{"", "book:read", false},
	}
	for _, tc := range tests {
		if got := p.HasPermission(tc.role, tc.perm); got != tc.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}

	var f Checker = CheckerFunc(func(s, _ string) bool { return s == "root" })
	if !f.HasPermission("root", "x:y") || f.HasPermission("bob", "x:y") {
		t.Error("CheckerFunc should delegate")
	}
}
