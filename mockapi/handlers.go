package mockapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bookstore/api"
	"github.com/kbukum/bookstore/auth/authctx"
	"github.com/kbukum/bookstore/auth/jwt"
	"github.com/kbukum/bookstore/auth/password"
	apperrors "github.com/kbukum/bookstore/errors"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/server"
	"github.com/kbukum/bookstore/util"
	"github.com/kbukum/bookstore/validation"
)

// bind decodes the JSON body into dst and validates it.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		server.RespondWithError(c, apperrors.Validation("Invalid JSON body").WithCause(err))
		return false
	}
	if err := validation.Validate(dst); err != nil {
		server.RespondWithError(c, err)
		return false
	}
	return true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		server.RespondWithError(c, apperrors.InvalidInput(key, "must be an integer"))
		return 0, false
	}
	return n, true
}

func pagination(c *gin.Context) (page, limit int, ok bool) {
	if page, ok = queryInt(c, "page"); !ok {
		return 0, 0, false
	}
	limit, ok = queryInt(c, "limit")
	return page, limit, ok
}

func caller(c *gin.Context) *jwt.Claims {
	claims, _ := authctx.Get(c.Request.Context())
	return claims
}

func (m *API) issue(c *gin.Context, u api.User, status int, message string) {
	token, err := m.tokens.Generate(jwt.NewClaims(u.ID, u.Username, u.Role))
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	refresh, err := password.GenerateToken(32)
	if err != nil {
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	m.log.WithContext(c.Request.Context()).Info(message, logger.Fields(logger.FieldUserID, u.ID))
	server.RespondMessage(c, status, message, api.AuthResponse{User: u, Token: token, RefreshToken: refresh})
}

func (m *API) login(c *gin.Context) {
	var req api.LoginRequest
	if !bind(c, &req) {
		return
	}
	u, err := m.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	m.issue(c, u, http.StatusOK, "Login successful")
}

func (m *API) register(c *gin.Context) {
	var req api.RegisterRequest
	if !bind(c, &req) {
		return
	}
	u, err := m.accounts.Create(api.CreateUserRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	m.issue(c, u, http.StatusCreated, "Registration successful")
}

func (m *API) logout(c *gin.Context) {
	m.revoke(caller(c))
	server.RespondMessage(c, http.StatusOK, "Logged out", nil)
}

func (m *API) getProfile(c *gin.Context) {
	u, err := m.accounts.Get(caller(c).UserID())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, u)
}

func (m *API) updateProfile(c *gin.Context) {
	var req api.UpdateUserRequest
	if !bind(c, &req) {
		return
	}
	u, err := m.accounts.Update(caller(c).UserID(), req, false)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondMessage(c, http.StatusOK, "Profile updated", u)
}

func (m *API) listUsers(c *gin.Context) {
	page, limit, ok := pagination(c)
	if !ok {
		return
	}
	server.RespondOK(c, m.accounts.List(api.UserListParams{Page: page, Limit: limit, Search: util.SanitizeString(c.Query("search"))}))
}

func (m *API) getUser(c *gin.Context) {
	u, err := m.accounts.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, u)
}

func (m *API) createUser(c *gin.Context) {
	var req api.CreateUserRequest
	if !bind(c, &req) {
		return
	}
	u, err := m.accounts.Create(req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, u)
}

func (m *API) updateUser(c *gin.Context) {
	var req api.UpdateUserRequest
	if !bind(c, &req) {
		return
	}
	u, err := m.accounts.Update(c.Param("id"), req, true)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, u)
}

func (m *API) deleteUser(c *gin.Context) {
	if err := m.accounts.Delete(c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondMessage(c, http.StatusOK, "User deleted", nil)
}

func (m *API) listBooks(c *gin.Context) {
	page, limit, ok := pagination(c)
	if !ok {
		return
	}
	params := api.BookListParams{
		Page:     page,
		Limit:    limit,
		Category: c.Query("category"),
		Search:   util.SanitizeString(c.Query("search")),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
	}
	if err := validation.Validate(params); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, m.catalog.List(params))
}

func (m *API) searchBooks(c *gin.Context) {
	server.RespondOK(c, m.catalog.Search(util.SanitizeString(c.Query("q"))))
}

func (m *API) getBook(c *gin.Context) {
	b, err := m.catalog.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, b)
}

func (m *API) createBook(c *gin.Context) {
	var req api.CreateBookRequest
	if !bind(c, &req) {
		return
	}
	b, err := m.catalog.Create(req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, b)
}

func (m *API) updateBook(c *gin.Context) {
	var req api.UpdateBookRequest
	if !bind(c, &req) {
		return
	}
	b, err := m.catalog.Update(c.Param("id"), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, b)
}

func (m *API) deleteBook(c *gin.Context) {
	if err := m.catalog.Delete(c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondMessage(c, http.StatusOK, "Book deleted", nil)
}

func (m *API) listCategories(c *gin.Context) {
	server.RespondOK(c, m.catalog.Categories())
}

func (m *API) getCategory(c *gin.Context) {
	cat, err := m.catalog.Category(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, cat)
}

func (m *API) listOrders(c *gin.Context) {
	page, limit, ok := pagination(c)
	if !ok {
		return
	}
	status := api.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		server.RespondWithError(c, apperrors.InvalidInput("status", "unknown order status "+string(status)))
		return
	}
	who := caller(c)
	all := m.checker.HasPermission(who.Role, permOrderReadAll)
	server.RespondOK(c, m.orders.List(who.UserID(), all, api.OrderListParams{Page: page, Limit: limit, Status: status}))
}

func (m *API) getOrder(c *gin.Context) {
	who := caller(c)
	order, err := m.orders.Get(c.Param("id"), who.UserID(), m.checker.HasPermission(who.Role, permOrderReadAll))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, order)
}

func (m *API) createOrder(c *gin.Context) {
	var req api.CreateOrderRequest
	if !bind(c, &req) {
		return
	}
	order, err := m.orders.Create(caller(c).UserID(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondMessage(c, http.StatusCreated, "Order placed", order)
}

func (m *API) updateOrderStatus(c *gin.Context) {
	var req api.UpdateOrderStatusRequest
	if !bind(c, &req) {
		return
	}
	order, err := m.orders.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, order)
}
