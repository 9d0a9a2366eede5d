// Package security holds the transport security policy of the bookstore
// client: whether plain http base URLs are refused and how server
// certificates are verified.
//
//	policy := security.HTTPSPolicy{Enforce: true}
//	if err := policy.CheckURL(baseURL); err != nil { ... }
//	tlsCfg, err := policy.TLSConfig()
package security
