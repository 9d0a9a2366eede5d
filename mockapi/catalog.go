package mockapi

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/bookstore/api"
	apperrors "github.com/kbukum/bookstore/errors"
)

// CategoryAll matches every book.
const CategoryAll = "all"

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Catalog holds books and categories.
type Catalog struct {
	mu         sync.RWMutex
	books      map[string]api.Book
	order      []string
	categories []api.Category
	now        func() time.Time
}

// NewCatalog returns a catalog seeded with the storefront data.
func NewCatalog(now func() time.Time) *Catalog {
	c := &Catalog{books: make(map[string]api.Book), now: now}
	c.categories = seedCategories()
	created := now()
	for _, b := range seedBooks() {
		b.CreatedAt, b.UpdatedAt = created, created
		c.books[b.ID] = b
		c.order = append(c.order, b.ID)
	}
	return c
}

func seedCategories() []api.Category {
	return []api.Category{
		{ID: CategoryAll, Name: "All books", Icon: "📚"},
		{ID: "programming", Name: "Programming", Icon: "💻"},
		{ID: "design", Name: "Design", Icon: "🎨"},
		{ID: "business", Name: "Business", Icon: "💼"},
		{ID: "science", Name: "Psychology", Icon: "🧠"},
		{ID: "history", Name: "History", Icon: "📖"},
	}
}

func seedBooks() []api.Book {
	const img = "https://images.unsplash.com/"
	return []api.Book{
		{ID: "1", Title: "Clean Code", Author: "Robert C. Martin", Price: 299000, OriginalPrice: 399000,
			CoverImage: img + "photo-1544947950-fa07a98d237f?w=400&h=600&fit=crop", Rating: 4.8, Reviews: 1234, Stock: 50, Category: "programming"},
		{ID: "2", Title: "The Pragmatic Programmer", Author: "Andrew Hunt, David Thomas", Price: 350000, OriginalPrice: 450000,
			CoverImage: img + "photo-1589998059171-988d887df646?w=400&h=600&fit=crop", Rating: 4.9, Reviews: 856, Stock: 30, Category: "programming"},
		{ID: "3", Title: "Design Patterns", Author: "Gang of Four", Price: 450000,
			CoverImage: img + "photo-1512820790803-83ca734da794?w=400&h=600&fit=crop", Rating: 4.7, Reviews: 654, Stock: 20, Category: "programming"},
		{ID: "4", Title: "You Don't Know JS", Author: "Kyle Simpson", Price: 280000,
			CoverImage: img + "photo-1532012197267-da84d127e765?w=400&h=600&fit=crop", Rating: 4.6, Reviews: 432, Stock: 40, Category: "programming"},
		{ID: "5", Title: "Refactoring", Author: "Martin Fowler", Price: 380000, OriginalPrice: 480000,
			CoverImage: img + "photo-1543002588-bfa74002ed7e?w=400&h=600&fit=crop", Rating: 4.8, Reviews: 789, Stock: 25, Category: "programming"},
		{ID: "6", Title: "The Art of Computer Programming", Author: "Donald Knuth", Price: 520000,
			CoverImage: img + "photo-1550399105-c4db5fb85c18?w=400&h=600&fit=crop", Rating: 4.9, Reviews: 567, Stock: 15, Category: "programming"},
		{ID: "7", Title: "Thinking, Fast and Slow", Author: "Daniel Kahneman", Price: 320000,
			CoverImage: img + "photo-1524995997946-a1c2e315a42f?w=400&h=600&fit=crop", Rating: 4.7, Reviews: 923, Stock: 35, Category: "science"},
		{ID: "8", Title: "Sapiens", Author: "Yuval Noah Harari", Price: 290000, OriginalPrice: 350000,
			CoverImage: img + "photo-1519682337058-a94d519337bc?w=400&h=600&fit=crop", Rating: 4.8, Reviews: 1567, Stock: 8, Category: "history"},
	}
}

// matches applies the storefront filter: category "all" or an exact match,
// and a case-insensitive substring of title or author.
func matches(b api.Book, category, search string) bool {
	if category != "" && category != CategoryAll && b.Category != category {
		return false
	}
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q)
}

// List filters, sorts and paginates books. Page and limit are clamped.
func (c *Catalog) List(p api.BookListParams) api.BookList {
	c.mu.RLock()
	books := make([]api.Book, 0, len(c.order))
	for _, id := range c.order {
		if b := c.books[id]; matches(b, p.Category, p.Search) {
			books = append(books, b)
		}
	}
	c.mu.RUnlock()

	if p.SortBy != "" {
		sortBooks(books, p.SortBy, p.Order == "desc")
	}

	page, limit := clampPage(p.Page, p.Limit)
	total := len(books)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)
	return api.BookList{
		Books:      books[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, min(limit, maxPageSize)
}

func sortBooks(books []api.Book, by string, desc bool) {
	slices.SortStableFunc(books, func(a, b api.Book) int {
		var r int
		switch by {
		case api.SortByTitle:
			r = cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case api.SortByPrice:
			r = cmp.Compare(a.Price, b.Price)
		case api.SortByPublishedDate:
			r = cmp.Compare(a.PublishedDate, b.PublishedDate)
		case api.SortByCreatedAt:
			r = a.CreatedAt.Compare(b.CreatedAt)
		}
		if desc {
			return -r
		}
		return r
	})
}

// Search returns every book whose title or author contains q.
func (c *Catalog) Search(q string) []api.Book {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []api.Book{}
	for _, id := range c.order {
		if b := c.books[id]; matches(b, "", q) {
			out = append(out, b)
		}
	}
	return out
}

// Get returns a book or NOT_FOUND.
func (c *Catalog) Get(id string) (api.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.books[id]
	if !ok {
		return api.Book{}, apperrors.NotFound("book", id)
	}
	return b, nil
}

// Create adds a book with a new id.
func (c *Catalog) Create(req api.CreateBookRequest) (api.Book, error) {
	if err := c.checkCategory(req.Category); err != nil {
		return api.Book{}, err
	}
	now := c.now()
	b := api.Book{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		CoverImage:    req.CoverImage,
		PublishedDate: req.PublishedDate,
		ISBN:          req.ISBN,
		Stock:         req.Stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.books[b.ID] = b
	c.order = append(c.order, b.ID)
	return b, nil
}

// Update applies the non-nil fields of req.
func (c *Catalog) Update(id string, req api.UpdateBookRequest) (api.Book, error) {
	if req.Category != nil {
		if err := c.checkCategory(*req.Category); err != nil {
			return api.Book{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.books[id]
	if !ok {
		return api.Book{}, apperrors.NotFound("book", id)
	}
	set(&b.Title, req.Title)
	set(&b.Author, req.Author)
	set(&b.Description, req.Description)
	set(&b.Price, req.Price)
	set(&b.OriginalPrice, req.OriginalPrice)
	set(&b.Category, req.Category)
	set(&b.CoverImage, req.CoverImage)
	set(&b.PublishedDate, req.PublishedDate)
	set(&b.ISBN, req.ISBN)
	set(&b.Stock, req.Stock)
	b.UpdatedAt = c.now()
	c.books[id] = b
	return b, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Delete removes a book.
func (c *Catalog) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.books[id]; !ok {
		return apperrors.NotFound("book", id)
	}
	delete(c.books, id)
	c.order = slices.DeleteFunc(c.order, func(s string) bool { return s == id })
	return nil
}

// Reserve takes qty copies of a book out of stock and returns the book.
func (c *Catalog) Reserve(id string, qty int) (api.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.books[id]
	if !ok {
		return api.Book{}, apperrors.NotFound("book", id)
	}
	if b.Stock < qty {
		return api.Book{}, apperrors.Conflict("not enough stock for "+b.Title).
			WithDetail("bookId", id).WithDetail("available", b.Stock)
	}
	b.Stock -= qty
	c.books[id] = b
	return b, nil
}

// Release puts qty copies back into stock. Deleted books are ignored.
func (c *Catalog) Release(id string, qty int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.books[id]; ok {
		b.Stock += qty
		c.books[id] = b
	}
}

// Categories returns the categories with live book counts.
func (c *Catalog) Categories() []api.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]api.Category, len(c.categories))
	for i, cat := range c.categories {
		cat.Count = c.countLocked(cat.ID)
		out[i] = cat
	}
	return out
}

// Category returns one category with its live count.
func (c *Catalog) Category(id string) (api.Category, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if cat.ID == id {
			cat.Count = c.countLocked(id)
			return cat, nil
		}
	}
	return api.Category{}, apperrors.NotFound("category", id)
}

func (c *Catalog) countLocked(category string) int {
	n := 0
	for _, b := range c.books {
		if matches(b, category, "") {
			n++
		}
	}
	return n
}

func (c *Catalog) checkCategory(id string) error {
	if id == "" {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if cat.ID == id && id != CategoryAll {
			return nil
		}
	}
	return apperrors.InvalidInput("category", "unknown category "+id)
}

// Len returns the number of books.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}
