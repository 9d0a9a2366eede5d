package authz

// Roles of bookstore accounts.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Checker reports whether subject holds permission.
type Checker interface {
	HasPermission(subject, permission string) bool
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(subject, permission string) bool

// HasPermission implements Checker.
func (f CheckerFunc) HasPermission(subject, permission string) bool {
	return f(subject, permission)
}

// MapChecker grants each subject a fixed list of permission patterns.
type MapChecker struct {
	permissions map[string][]string
}

// NewMapChecker creates a MapChecker.
func NewMapChecker(permissions map[string][]string) *MapChecker {
	return &MapChecker{permissions: permissions}
}

// HasPermission implements Checker. Unknown subjects hold nothing.
func (c *MapChecker) HasPermission(subject, required string) bool {
	return MatchAny(c.permissions[subject], required)
}

// DefaultPolicy is the mock API policy: admins may do anything, users may
// browse the catalog and manage their own profile and orders.
func DefaultPolicy() *MapChecker {
	return NewMapChecker(map[string][]string{
		RoleAdmin: {"*:*"},
		RoleUser: {
			"book:read", "category:read",
			"profile:*", "order:read", "order:create",
		},
	})
}
