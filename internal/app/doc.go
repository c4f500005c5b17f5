// Package app wires the application together: configuration loading, the
// slog logger, the Prometheus registry, the WebSocket hub, the calculation
// job queue and the HTTP server.
//
// The typical entry point:
//
//	application, err := app.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts down gracefully: the
// HTTP server drains in-flight requests, the job queue finishes running
// calculations, and the hub closes its clients.
package app
