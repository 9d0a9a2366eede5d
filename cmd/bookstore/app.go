package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kbukum/bookstore/api"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/resilience"
	"github.com/kbukum/bookstore/session"
	"github.com/kbukum/bookstore/util"
)

const commandHelp = `  login       [-u user] [-p password]   sign in, prompting for missing values
  register    -u user -e email [-name n] [-phone p]
  logout                                 sign out and clear the local session
  whoami                                 show the signed-in user
  books       [-category c] [-search s] [-sort field] [-order asc|desc] [-page n] [-limit n]
  book        <id>
  search      <query>
  categories
  orders      [-status s] [-page n] [-limit n]
  order       <id>
  buy         <book-id>[:qty] ...        place an order
  version
`

var errUsage = errors.New("usage")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

func isUsage(err error) bool { return errors.Is(err, errUsage) }

// App runs one CLI command against the API.
type App struct {
	svc   *api.Service
	store session.Store
	retry resilience.RetryConfig
	in    *bufio.Reader
	out   io.Writer
}

type command func(ctx context.Context, args []string) error

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":      a.login,
		"register":   a.register,
		"logout":     a.logout,
		"whoami":     a.whoami,
		"books":      a.books,
		"book":       a.book,
		"search":     a.search,
		"categories": a.categories,
		"orders":     a.orders,
		"order":      a.order,
		"buy":        a.buy,
	}
}

// Run dispatches args[0] with the remaining arguments.
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, ok := a.commands()[args[0]]
	if !ok {
		return usageError("unknown command %q", args[0])
	}
	return cmd(ctx, args[1:])
}

// call runs fn under the configured retry policy.
func call[T any](ctx context.Context, a *App, fn func(context.Context) (T, error)) (T, error) {
	return resilience.Retry(ctx, a.retry, func() (T, error) { return fn(ctx) })
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return usageError("%s: %v", fs.Name(), err)
	}
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	username := fs.String("u", "", "username")
	pw := fs.String("p", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}

	var err error
	if *username == "" {
		if *username, err = promptLine(a.in, a.out, "Username: "); err != nil {
			return err
		}
	}
	if *pw == "" {
		if *pw, err = promptPassword(a.in, a.out); err != nil {
			return err
		}
	}

	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[api.AuthResponse], error) {
		return a.svc.Login(ctx, api.LoginRequest{Username: *username, Password: *pw})
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", resp.Data.User.Username, resp.Data.User.Role)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := newFlags("register")
	var req api.RegisterRequest
	fs.StringVar(&req.Username, "u", "", "username")
	fs.StringVar(&req.Email, "e", "", "email")
	fs.StringVar(&req.FullName, "name", "", "full name")
	fs.StringVar(&req.Phone, "phone", "", "phone")
	fs.StringVar(&req.Password, "p", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}
	if req.Password == "" {
		pw, err := promptPassword(a.in, a.out)
		if err != nil {
			return err
		}
		req.Password = pw
	}

	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[api.AuthResponse], error) {
		return a.svc.Register(ctx, req)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and signed in as %s\n", resp.Data.User.Username)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.svc.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) whoami(ctx context.Context, _ []string) error {
	u, err := a.svc.CurrentUser(ctx)
	if err != nil {
		return err
	}
	token, _, err := a.store.Get(ctx, session.KeyAuthToken)
	if err != nil {
		return err
	}
	if u == nil || token == "" {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	tw := newTable(a.out)
	fmt.Fprintf(tw, "User\t%s\n", u.Username)
	fmt.Fprintf(tw, "Role\t%s\n", u.Role)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Token\t%s\n", util.MaskSecret(token, 8))
	return tw.Flush()
}

func (a *App) books(ctx context.Context, args []string) error {
	fs := newFlags("books")
	var p api.BookListParams
	fs.StringVar(&p.Category, "category", "", "category id, or all")
	fs.StringVar(&p.Search, "search", "", "title or author substring")
	fs.StringVar(&p.SortBy, "sort", "", "title, price, publishedDate or createdAt")
	fs.StringVar(&p.Order, "order", "", "asc or desc")
	fs.IntVar(&p.Page, "page", 0, "page number")
	fs.IntVar(&p.Limit, "limit", 0, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}

	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[api.BookList], error) {
		return a.svc.GetAllBooks(ctx, p)
	})
	if err != nil {
		return err
	}
	list := resp.Data
	if err := printBooks(a.out, list.Books); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\nPage %d of %d, %d books\n", list.Page, max(list.TotalPages, 1), list.Total)
	return nil
}

func (a *App) book(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("book <id>")
	}
	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[api.Book], error) {
		return a.svc.GetOneBook(ctx, args[0])
	})
	if err != nil {
		return err
	}
	b := resp.Data
	tw := newTable(a.out)
	fmt.Fprintf(tw, "ID\t%s\n", b.ID)
	fmt.Fprintf(tw, "Title\t%s\n", b.Title)
	fmt.Fprintf(tw, "Author\t%s\n", b.Author)
	fmt.Fprintf(tw, "Category\t%s\n", b.Category)
	fmt.Fprintf(tw, "Price\t%s\n", formatPrice(b.Price, b.OriginalPrice))
	fmt.Fprintf(tw, "Rating\t%.1f (%d reviews)\n", b.Rating, b.Reviews)
	fmt.Fprintf(tw, "Stock\t%d\n", b.Stock)
	if b.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", b.Description)
	}
	return tw.Flush()
}

func (a *App) search(ctx context.Context, args []string) error {
	q := util.SanitizeString(strings.Join(args, " "))
	if q == "" {
		return usageError("search <query>")
	}
	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[[]api.Book], error) {
		return a.svc.SearchBooks(ctx, q)
	})
	if err != nil {
		return err
	}
	if len(resp.Data) == 0 {
		fmt.Fprintf(a.out, "No books match %q\n", q)
		return nil
	}
	return printBooks(a.out, resp.Data)
}

func (a *App) categories(ctx context.Context, _ []string) error {
	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[[]api.Category], error) {
		return a.svc.GetAllCategories(ctx)
	})
	if err != nil {
		return err
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tNAME\tBOOKS")
	for _, c := range resp.Data {
		fmt.Fprintf(tw, "%s\t%s %s\t%d\n", c.ID, c.Icon, c.Name, c.Count)
	}
	return tw.Flush()
}

func (a *App) orders(ctx context.Context, args []string) error {
	fs := newFlags("orders")
	var p api.OrderListParams
	status := fs.String("status", "", "pending, paid, shipped, delivered or cancelled")
	fs.IntVar(&p.Page, "page", 0, "page number")
	fs.IntVar(&p.Limit, "limit", 0, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}
	p.Status = api.OrderStatus(*status)

	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[api.OrderList], error) {
		return a.svc.GetAllOrders(ctx, p)
	})
	if err != nil {
		return err
	}
	if len(resp.Data.Orders) == 0 {
		fmt.Fprintln(a.out, "No orders")
		return nil
	}
	tw := newTable(a.out)
	fmt.Fprintln(tw, "ID\tSTATUS\tITEMS\tTOTAL\tPLACED")
	for _, o := range resp.Data.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.ID, o.Status, len(o.Items), formatMoney(o.Total), formatTime(o.CreatedAt))
	}
	return tw.Flush()
}

func (a *App) order(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("order <id>")
	}
	resp, err := call(ctx, a, func(ctx context.Context) (*httpclient.APIResponse[api.Order], error) {
		return a.svc.GetOneOrder(ctx, args[0])
	})
	if err != nil {
		return err
	}
	return printOrder(a.out, resp.Data)
}

func (a *App) buy(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("buy <book-id>[:qty] ...")
	}
	items, err := parseItems(args)
	if err != nil {
		return err
	}
	// Placing an order is not idempotent, so it is never retried.
	resp, err := a.svc.CreateOrder(ctx, api.CreateOrderRequest{Items: items})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, util.Coalesce(resp.Message, "Order placed"))
	return printOrder(a.out, resp.Data)
}

// parseItems reads "id" or "id:qty" arguments.
func parseItems(args []string) ([]api.OrderItem, error) {
	items := make([]api.OrderItem, 0, len(args))
	for _, arg := range args {
		id, qty, found := strings.Cut(arg, ":")
		n := 1
		if found {
			var err error
			if n, err = strconv.Atoi(qty); err != nil || n < 1 {
				return nil, usageError("bad quantity in %q", arg)
			}
		}
		if id == "" {
			return nil, usageError("missing book id in %q", arg)
		}
		items = append(items, api.OrderItem{BookID: id, Quantity: n})
	}
	return items, nil
}
