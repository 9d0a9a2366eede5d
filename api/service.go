package api

import (
	"github.com/kbukum/bookstore/httpclient"
	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/session"
)

// Service exposes the bookstore operations. The session store holds the
// token the client injects and the user saved at login.
type Service struct {
	client *httpclient.Client
	store  session.Store
	log    *logger.Logger
}

// New creates a Service. A nil log uses the global logger.
func New(client *httpclient.Client, store session.Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Service{
		client: client,
		store:  store,
		log:    log.WithComponent("api"),
	}
}
