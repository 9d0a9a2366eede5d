// Package bootstrap runs a long-lived bookstore process: it validates the
// config, starts components in order, runs lifecycle hooks, waits for a
// shutdown signal and stops everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.Register(httpServer)
//	app.OnStop(flushTelemetry)
//	err = app.Run(ctx)
package bootstrap
