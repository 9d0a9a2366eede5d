// Package api groups the bookstore operations by resource on top of
// httpclient. Login and Register persist the token and user in the session
// store; Logout always clears them.
//
//	svc := api.New(client, store, log)
//	auth, err := svc.Login(ctx, api.LoginRequest{Username: "ada", Password: "secret1"})
//	books, err := svc.GetAllBooks(ctx, api.BookListParams{Category: "programming", Page: 2})
package api
