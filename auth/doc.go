// Package auth holds the token and password primitives of the mock API.
//
//   - auth/jwt:      HS* access tokens carrying the user id, username and role
//   - auth/password: bcrypt hashing and random refresh tokens
//   - auth/authctx:  claims propagation through request contexts
//
// Role checks live in the authz package.
package auth
