// Package telemetry implements loadable.Observer with Prometheus metrics and
// OpenTelemetry spans.
//
// Install it on a registry at startup:
//
//	obs := telemetry.New(telemetry.WithRegistry(promRegistry))
//	loadable.Default.Configure(loadable.WithObserver(obs))
//
// Spans use the global tracer provider unless WithTracerProvider is given.
package telemetry
