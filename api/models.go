package api

import (
	"net/url"
	"strconv"
	"time"
)

// User is an account as returned by the API.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// AuthResponse is the result of login and register.
type AuthResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

// UpdateUserRequest changes only the non-empty fields.
type UpdateUserRequest struct {
	FullName string `json:"fullName,omitempty" validate:"omitempty,max=100"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

// UserListParams filters GetAllUsers. Zero values are not sent.
type UserListParams struct {
	Page   int
	Limit  int
	Search string
}

func (p UserListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
	setString(v, "search", p.Search)
	return v
}

type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// Book is a catalog entry. Prices are in the smallest currency unit.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Description   string    `json:"description,omitempty"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"originalPrice,omitempty"`
	Category      string    `json:"category,omitempty"`
	CoverImage    string    `json:"coverImage,omitempty"`
	PublishedDate string    `json:"publishedDate,omitempty"`
	ISBN          string    `json:"isbn,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	Reviews       int       `json:"reviews,omitempty"`
	Stock         int       `json:"stock"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
	UpdatedAt     time.Time `json:"updatedAt,omitzero"`
}

type CreateBookRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Author        string `json:"author" validate:"required,max=200"`
	Description   string `json:"description,omitempty"`
	Price         int64  `json:"price" validate:"gte=0"`
	OriginalPrice int64  `json:"originalPrice,omitempty" validate:"gte=0"`
	Category      string `json:"category,omitempty"`
	CoverImage    string `json:"coverImage,omitempty" validate:"omitempty,url"`
	PublishedDate string `json:"publishedDate,omitempty"`
	ISBN          string `json:"isbn,omitempty" validate:"omitempty,max=17"`
	Stock         int    `json:"stock" validate:"gte=0"`
}

// UpdateBookRequest changes only the non-nil fields.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Author        *string `json:"author,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description,omitempty"`
	Price         *int64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	OriginalPrice *int64  `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Category      *string `json:"category,omitempty"`
	CoverImage    *string `json:"coverImage,omitempty" validate:"omitempty,url"`
	PublishedDate *string `json:"publishedDate,omitempty"`
	ISBN          *string `json:"isbn,omitempty" validate:"omitempty,max=17"`
	Stock         *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
}

// Sort fields accepted by the book listing.
const (
	SortByTitle         = "title"
	SortByPrice         = "price"
	SortByPublishedDate = "publishedDate"
	SortByCreatedAt     = "createdAt"
)

// BookListParams filters GetAllBooks. Zero values are not sent.
type BookListParams struct {
	Page     int `validate:"gte=0"`
	Limit    int `validate:"gte=0,lte=100"`
	Category string
	Search   string
	SortBy   string `validate:"omitempty,oneof=title price publishedDate createdAt"`
	Order    string `validate:"omitempty,oneof=asc desc"`
}

func (p BookListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
	setString(v, "category", p.Category)
	setString(v, "search", p.Search)
	setString(v, "sortBy", p.SortBy)
	setString(v, "order", p.Order)
	return v
}

type BookList struct {
	Books      []Book `json:"books"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

// Category groups books. Count is the number of books in it.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Count int    `json:"count"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every valid status.
var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type OrderItem struct {
	BookID   string `json:"bookId" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	Price    int64  `json:"price,omitempty"`
}

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Items     []OrderItem `json:"items"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt,omitzero"`
	UpdatedAt time.Time   `json:"updatedAt,omitzero"`
}

type CreateOrderRequest struct {
	Items []OrderItem `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending paid shipped delivered cancelled"`
}

// OrderListParams filters GetAllOrders. Zero values are not sent.
type OrderListParams struct {
	Page   int
	Limit  int
	Status OrderStatus
}

func (p OrderListParams) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", p.Page)
	setInt(v, "limit", p.Limit)
	setString(v, "status", string(p.Status))
	return v
}

type OrderList struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
}

func setInt(v url.Values, key string, n int) {
	if n != 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func setString(v url.Values, key, s string) {
	if s != "" {
		v.Set(key, s)
	}
}
