// Package endpoint is the static table of bookstore API paths.
//
// Templates carry :name placeholders that are substituted before dispatch:
//
//	endpoint.Book.GetOne.WithID("42") // "/books/42"
package endpoint

import (
	"net/url"
	"strings"
)

// Template is a path with :name placeholders.
type Template string

// Expand replaces each :name placeholder with the path-escaped value of
// params[name]. Placeholders without a value stay literal.
func (t Template) Expand(params map[string]string) string {
	s := string(t)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != ':' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i + 1
		for j < len(s) && isNameByte(s[j]) {
			j++
		}
		name := s[i+1 : j]
		if v, ok := params[name]; ok && name != "" {
			b.WriteString(url.PathEscape(v))
		} else {
			b.WriteString(s[i:j])
		}
		i = j
	}
	return b.String()
}

// WithID expands the :id placeholder.
func (t Template) WithID(id string) string {
	return t.Expand(map[string]string{"id": id})
}

// Params lists the placeholder names in order.
func (t Template) Params() []string {
	var names []string
	for _, seg := range strings.Split(string(t), "/") {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			names = append(names, seg[1:])
		}
	}
	return names
}

func (t Template) String() string { return string(t) }

func isNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Endpoints of the user resource.
var User = struct {
	Login, Register, Logout                Template
	GetAll, GetOne, Create, Update, Delete Template
	GetProfile, UpdateProfile              Template
}{
	Login:         "/auth/login",
	Register:      "/auth/register",
	Logout:        "/auth/logout",
	GetAll:        "/users",
	GetOne:        "/users/:id",
	Create:        "/users",
	Update:        "/users/:id",
	Delete:        "/users/:id",
	GetProfile:    "/users/profile",
	UpdateProfile: "/users/profile",
}

// Endpoints of the book resource.
var Book = struct {
	GetAll, GetOne, Create, Update, Delete, Search Template
}{
	GetAll: "/books",
	GetOne: "/books/:id",
	Create: "/books",
	Update: "/books/:id",
	Delete: "/books/:id",
	Search: "/books/search",
}

// Endpoints of the category resource.
var Category = struct {
	GetAll, GetOne Template
}{
	GetAll: "/categories",
	GetOne: "/categories/:id",
}

// Endpoints of the order resource.
var Order = struct {
	GetAll, GetOne, Create, UpdateStatus Template
}{
	GetAll:       "/orders",
	GetOne:       "/orders/:id",
	Create:       "/orders",
	UpdateStatus: "/orders/:id/status",
}

// registry indexes every template by resource and operation name.
var registry = map[string]map[string]Template{
	"user": {
		"login": User.Login, "register": User.Register, "logout": User.Logout,
		"get_all": User.GetAll, "get_one": User.GetOne, "create": User.Create,
		"update": User.Update, "delete": User.Delete,
		"get_profile": User.GetProfile, "update_profile": User.UpdateProfile,
	},
	"book": {
		"get_all": Book.GetAll, "get_one": Book.GetOne, "create": Book.Create,
		"update": Book.Update, "delete": Book.Delete, "search": Book.Search,
	},
	"category": {
		"get_all": Category.GetAll, "get_one": Category.GetOne,
	},
	"order": {
		"get_all": Order.GetAll, "get_one": Order.GetOne, "create": Order.Create,
		"update_status": Order.UpdateStatus,
	},
}

// Lookup returns the template registered for resource and operation.
func Lookup(resource, operation string) (Template, bool) {
	t, ok := registry[resource][operation]
	return t, ok
}

// Resources returns the registered resource names.
func Resources() []string {
	return []string{"user", "book", "category", "order"}
}

// Operations returns the operation names of resource.
func Operations(resource string) []string {
	ops := make([]string, 0, len(registry[resource]))
	for op := range registry[resource] {
		ops = append(ops, op)
	}
	return ops
}
