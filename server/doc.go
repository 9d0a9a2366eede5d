// Package server runs the bookstore mock API on Gin, served over HTTP/1.1
// and h2c.
//
// Responses use the envelope the client expects:
//
//	{"success": true, "data": ..., "message": "..."}
//	{"success": false, "message": "...", "code": "NOT_FOUND"}
//
// Middleware lives in server/middleware: recovery, request id, request
// logging, CORS, body size limit, rate limiting and bearer authentication.
package server
