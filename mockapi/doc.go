// Package mockapi is an in-memory implementation of the bookstore API. It
// serves the storefront catalog, accounts with bcrypt passwords and JWT
// access tokens, and orders, behind the same envelope the client parses.
//
//	srv := server.New(cfg.HTTP, log)
//	srv.ApplyMiddleware()
//	m, err := mockapi.New(mockapi.Options{JWT: jwtCfg}, log)
//	m.Register(srv.API(), cfg.HTTP.LoginRateLimit)
package mockapi
