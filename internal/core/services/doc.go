// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend on domain and ports only, plus the OpenTelemetry API
// for tracing and metrics. Without an installed provider the API is a no-op.
package services
