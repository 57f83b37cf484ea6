// Package app wires the mfbench web service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, config file and environment
//	2. Initialize structured logging
//	3. Initialize OpenTelemetry providers and analysis metrics
//	4. Create the analysis and health services
//	5. Build the chi router and its middleware chain
//	6. Create the HTTP server
//
// # Middleware Order
//
// RequestID, RealIP, OpenTelemetry, StructuredLogger, Recoverer, security
// headers, CORS and rate limiting apply to every route. Routes under /api
// render JSON; the analysis routes additionally carry the upload size limit
// and the request timeout.
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT or SIGTERM and then shuts the server and the
// telemetry providers down gracefully.
package app
