package endpoint

import (
	"slices"
	"testing"
)

func TestTemplateWithID(t *testing.T) {
	if got := Book.GetOne.WithID("42"); got != "/books/42" {
		t.Errorf("expected /books/42, got %q", got)
	}
	if got := Order.UpdateStatus.WithID("o-7"); got != "/orders/o-7/status" {
		t.Errorf("unexpected %q", got)
	}
}

func TestTemplateExpand(t *testing.T) {
	tests := []struct {
		name   string
		tmpl   Template
		params map[string]string
		want   string
	}{
		{"no placeholders", User.GetProfile, nil, "/users/profile"},
		{"escaped value", Book.GetOne, map[string]string{"id": "a b/c"}, "/books/a%20b%2Fc"},
		{"unresolved stays literal", Book.GetOne, map[string]string{}, "/books/:id"},
		{"multiple", Template("/shelves/:shelf/books/:id"), map[string]string{"shelf": "s1", "id": "9"}, "/shelves/s1/books/9"},
		{"partial", Template("/shelves/:shelf/books/:id"), map[string]string{"id": "9"}, "/shelves/:shelf/books/9"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tmpl.Expand(tc.params); got != tc.want {
				t.Errorf("Expand() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTemplateParams(t *testing.T) {
	got := Template("/shelves/:shelf/books/:id").Params()
	if !slices.Equal(got, []string{"shelf", "id"}) {
		t.Errorf("unexpected params %v", got)
	}
	if len(Book.GetAll.Params()) != 0 {
		t.Error("expected no params")
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		resource, op string
		want         Template
	}{
		{"user", "login", "/auth/login"},
		{"user", "register", "/auth/register"},
		{"user", "logout", "/auth/logout"},
		{"user", "get_one", "/users/:id"},
		{"user", "update_profile", "/users/profile"},
		{"book", "search", "/books/search"},
		{"book", "delete", "/books/:id"},
		{"category", "get_one", "/categories/:id"},
		{"order", "update_status", "/orders/:id/status"},
	}
	for _, tc := range tests {
		got, ok := Lookup(tc.resource, tc.op)
		if !ok || got != tc.want {
			t.Errorf("Lookup(%s, %s) = %q, %v", tc.resource, tc.op, got, ok)
		}
	}
	if _, ok := Lookup("book", "rate"); ok {
		t.Error("unknown operation should not resolve")
	}
	if _, ok := Lookup("author", "get_all"); ok {
		t.Error("unknown resource should not resolve")
	}
}

func TestRegistryCoversResources(t *testing.T) {
	want := map[string]int{"user": 10, "book": 6, "category": 2, "order": 4}
	for _, r := range Resources() {
		if got := len(Operations(r)); got != want[r] {
			t.Errorf("%s: expected %d operations, got %d", r, want[r], got)
		}
	}
}
