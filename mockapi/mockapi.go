package mockapi

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bookstore/api"
	"github.com/kbukum/bookstore/auth/jwt"
	"github.com/kbukum/bookstore/auth/password"
	"github.com/kbukum/bookstore/authz"
	"github.com/kbukum/bookstore/endpoint"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/server/middleware"
)

// Permission granting visibility of every user's orders.
const permOrderReadAll = "order:read_all"

// Options configures the mock API.
type Options struct {
	JWT jwt.Config
	// Hasher defaults to bcrypt with the default cost.
	Hasher password.Hasher
	// Checker defaults to authz.DefaultPolicy.
	Checker authz.Checker
	// AdminUsername and AdminPassword seed an admin account when both are set.
	AdminUsername string
	AdminPassword string
	// Now defaults to time.Now.
	Now func() time.Time
}

// API serves the bookstore endpoints from memory.
type API struct {
	catalog  *Catalog
	accounts *Accounts
	orders   *Orders
	tokens   *jwt.Service
	checker  authz.Checker
	log      *logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// New creates the API with the seeded catalog.
func New(opts Options, log *logger.Logger) (*API, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Hasher == nil {
		opts.Hasher = password.NewBcryptHasher()
	}
	if opts.Checker == nil {
		opts.Checker = authz.DefaultPolicy()
	}
	tokens, err := jwt.NewService(&opts.JWT)
	if err != nil {
		return nil, fmt.Errorf("mockapi: %w", err)
	}

	catalog := NewCatalog(opts.Now)
	m := &API{
		catalog:  catalog,
		accounts: NewAccounts(opts.Hasher, opts.Now),
		orders:   NewOrders(catalog, opts.Now),
		tokens:   tokens,
		checker:  opts.Checker,
		log:      log.WithComponent("mockapi"),
		now:      opts.Now,
		revoked:  make(map[string]time.Time),
	}

	if opts.AdminUsername != "" && opts.AdminPassword != "" {
		_, err := m.accounts.Create(api.CreateUserRequest{
			Username: opts.AdminUsername,
			Password: opts.AdminPassword,
			Email:    opts.AdminUsername + "@bookstore.local",
			Role:     authz.RoleAdmin,
		})
		if err != nil {
			return nil, fmt.Errorf("mockapi: seed admin: %w", err)
		}
	}
	m.log.Info("Mock API ready", logger.Fields("books", catalog.Len(), "users", m.accounts.Len()))
	return m, nil
}

// Register mounts every route on r. Paths come from the endpoint table, so
// the server and the client share one definition. Login and register are
// limited to loginLimit requests per minute and client.
func (m *API) Register(r gin.IRouter, loginLimit int) {
	authed := middleware.Auth(m.parseToken)
	perm := func(p string) gin.HandlerFunc { return middleware.RequirePermission(m.checker, p) }
	limited := middleware.RateLimit(middleware.RateLimitConfig{Requests: loginLimit})

	r.POST(endpoint.User.Login.String(), limited, m.login)
	r.POST(endpoint.User.Register.String(), limited, m.register)
	r.POST(endpoint.User.Logout.String(), authed, m.logout)

	r.GET(endpoint.User.GetProfile.String(), authed, perm("profile:read"), m.getProfile)
	r.PUT(endpoint.User.UpdateProfile.String(), authed, perm("profile:update"), m.updateProfile)
	r.GET(endpoint.User.GetAll.String(), authed, perm("user:read"), m.listUsers)
	r.GET(endpoint.User.GetOne.String(), authed, perm("user:read"), m.getUser)
	r.POST(endpoint.User.Create.String(), authed, perm("user:create"), m.createUser)
	r.PUT(endpoint.User.Update.String(), authed, perm("user:update"), m.updateUser)
	r.DELETE(endpoint.User.Delete.String(), authed, perm("user:delete"), m.deleteUser)

	r.GET(endpoint.Book.GetAll.String(), m.listBooks)
	r.GET(endpoint.Book.Search.String(), m.searchBooks)
	r.GET(endpoint.Book.GetOne.String(), m.getBook)
	r.POST(endpoint.Book.Create.String(), authed, perm("book:create"), m.createBook)
	r.PUT(endpoint.Book.Update.String(), authed, perm("book:update"), m.updateBook)
	r.DELETE(endpoint.Book.Delete.String(), authed, perm("book:delete"), m.deleteBook)

	r.GET(endpoint.Category.GetAll.String(), m.listCategories)
	r.GET(endpoint.Category.GetOne.String(), m.getCategory)

	r.GET(endpoint.Order.GetAll.String(), authed, perm("order:read"), m.listOrders)
	r.GET(endpoint.Order.GetOne.String(), authed, perm("order:read"), m.getOrder)
	r.POST(endpoint.Order.Create.String(), authed, perm("order:create"), m.createOrder)
	r.PUT(endpoint.Order.UpdateStatus.String(), authed, perm("order:update"), m.updateOrderStatus)
}

// parseToken verifies a token and rejects revoked ones.
func (m *API) parseToken(token string) (*jwt.Claims, error) {
	claims, err := m.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, revoked := m.revoked[claims.ID]; revoked {
		return nil, fmt.Errorf("%w: revoked", jwt.ErrInvalidToken)
	}
	return claims, nil
}

// revoke denies a token until it expires. Expired entries are pruned.
func (m *API) revoke(claims *jwt.Claims) {
	now := m.now()
	until := now.Add(m.tokens.TTL())
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, id)
		}
	}
	m.revoked[claims.ID] = until
}

// CheckHealth implements observability.HealthChecker.
func (m *API) CheckHealth(context.Context) observability.Health {
	return observability.Health{
		Name:   "catalog",
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"books": strconv.Itoa(m.catalog.Len()),
			"users": strconv.Itoa(m.accounts.Len()),
		},
	}
}
