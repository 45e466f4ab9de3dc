// Package metrics provides build metrics for the documentation builder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default so callers never need nil checks; PrometheusRecorder is wired in
// when a metrics address is configured:
//
//	reg := prom.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
