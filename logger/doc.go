// Package logger provides structured logging for the bookstore client and
// mock API using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("httpclient")
//	log.Info("request completed", logger.Fields("status", 200))
package logger
