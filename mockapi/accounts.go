package mockapi

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/bookstore/api"
	"github.com/kbukum/bookstore/auth/password"
	"github.com/kbukum/bookstore/authz"
	apperrors "github.com/kbukum/bookstore/errors"
)

type account struct {
	user api.User
	hash string
}

// Accounts holds users and their password hashes.
type Accounts struct {
	mu         sync.RWMutex
	byID       map[string]*account
	byUsername map[string]string
	order      []string
	hasher     password.Hasher
	now        func() time.Time
}

// NewAccounts creates an empty account store.
func NewAccounts(hasher password.Hasher, now func() time.Time) *Accounts {
	return &Accounts{
		byID:       make(map[string]*account),
		byUsername: make(map[string]string),
		hasher:     hasher,
		now:        now,
	}
}

// Create adds a user. Usernames are unique, case-insensitively. An empty
// role means authz.RoleUser.
func (a *Accounts) Create(req api.CreateUserRequest) (api.User, error) {
	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return api.User{}, apperrors.InvalidInput("password", err.Error())
	}
	role := req.Role
	if role == "" {
		role = authz.RoleUser
	}
	u := api.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Role:      role,
		CreatedAt: a.now(),
	}

	key := strings.ToLower(req.Username)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, taken := a.byUsername[key]; taken {
		return api.User{}, apperrors.AlreadyExists("user").WithDetail("field", "username")
	}
	a.byID[u.ID] = &account{user: u, hash: hash}
	a.byUsername[key] = u.ID
	a.order = append(a.order, u.ID)
	return u, nil
}

// Authenticate returns the user whose credentials match.
func (a *Accounts) Authenticate(username, pw string) (api.User, error) {
	a.mu.RLock()
	acc, ok := a.byID[a.byUsername[strings.ToLower(username)]]
	a.mu.RUnlock()
	if !ok {
		return api.User{}, apperrors.InvalidCredentials()
	}
	if err := a.hasher.Verify(pw, acc.hash); err != nil {
		return api.User{}, apperrors.InvalidCredentials()
	}
	return acc.user, nil
}

// Get returns a user or NOT_FOUND.
func (a *Accounts) Get(id string) (api.User, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.byID[id]
	if !ok {
		return api.User{}, apperrors.NotFound("user", id)
	}
	return acc.user, nil
}

// List returns users whose username, email or name contains search.
func (a *Accounts) List(p api.UserListParams) api.UserList {
	q := strings.ToLower(p.Search)
	a.mu.RLock()
	users := []api.User{}
	for _, id := range a.order {
		u := a.byID[id].user
		if q == "" || strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.FullName), q) {
			users = append(users, u)
		}
	}
	a.mu.RUnlock()

	page, limit := clampPage(p.Page, p.Limit)
	start := min((page-1)*limit, len(users))
	end := min(start+limit, len(users))
	return api.UserList{Users: users[start:end], Total: len(users)}
}

// Update applies the non-empty fields of req. Role changes are applied only
// when allowRole is set.
func (a *Accounts) Update(id string, req api.UpdateUserRequest, allowRole bool) (api.User, error) {
	if req.Role != "" && !allowRole {
		return api.User{}, apperrors.Forbidden("role change")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.byID[id]
	if !ok {
		return api.User{}, apperrors.NotFound("user", id)
	}
	u := &acc.user
	if req.FullName != "" {
		u.FullName = req.FullName
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Phone != "" {
		u.Phone = req.Phone
	}
	if req.Role != "" {
		u.Role = req.Role
	}
	return *u, nil
}

// Delete removes a user.
func (a *Accounts) Delete(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc, ok := a.byID[id]
	if !ok {
		return apperrors.NotFound("user", id)
	}
	delete(a.byUsername, strings.ToLower(acc.user.Username))
	delete(a.byID, id)
	a.order = slices.DeleteFunc(a.order, func(s string) bool { return s == id })
	return nil
}

// Len returns the number of users.
func (a *Accounts) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.byID)
}
