// Package authz decides which roles may perform which bookstore operations.
//
// Permissions have the form "resource:action" and role grants may use "*"
// on either side:
//
//	checker := authz.DefaultPolicy()
//	checker.HasPermission(authz.RoleUser, "book:read")   // true
//	checker.HasPermission(authz.RoleUser, "book:delete") // false
package authz
