package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kbukum/bookstore/api"
	apperrors "github.com/kbukum/bookstore/errors"
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/util"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printBooks(w io.Writer, books []api.Book) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tPRICE\tRATING\tSTOCK")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%d\n", b.ID, util.Truncate(b.Title, 40), util.Truncate(b.Author, 28), formatMoney(b.Price), b.Rating, b.Stock)
	}
	return tw.Flush()
}

func printOrder(w io.Writer, o api.Order) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Order\t%s\n", o.ID)
	fmt.Fprintf(tw, "Status\t%s\n", o.Status)
	fmt.Fprintf(tw, "Placed\t%s\n", formatTime(o.CreatedAt))
	for _, it := range o.Items {
		fmt.Fprintf(tw, "  book %s\t%d x %s\n", it.BookID, it.Quantity, formatMoney(it.Price))
	}
	fmt.Fprintf(tw, "Total\t%s\n", formatMoney(o.Total))
	return tw.Flush()
}

// formatMoney groups digits by thousands: 1234567 -> "1,234,567".
func formatMoney(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatPrice(price, original int64) string {
	if original > price {
		return fmt.Sprintf("%s (was %s)", formatMoney(price), formatMoney(original))
	}
	return formatMoney(price)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// describe renders an error for the terminal.
func describe(err error) string {
	if e, ok := httpclient.AsError(err); ok {
		switch e.Kind {
		case httpclient.KindTimeout:
			return "the server did not answer in time"
		case httpclient.KindNetwork:
			return "cannot reach the server: " + e.Message
		case httpclient.KindServer:
			if e.Status == http.StatusUnauthorized {
				return e.Message + " (try: bookstore login)"
			}
			return e.Message
		}
		return e.Message
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
