package bootstrap

import "github.com/kbukum/bookstore/config"

// Config is satisfied by any config struct that embeds config.ServiceConfig
// and defines ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
