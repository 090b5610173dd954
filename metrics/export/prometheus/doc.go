// Package prometheus exposes goAuthClient metrics as a client_golang
// [prometheus.Collector].
//
// [NewPrometheusExporter] registers the collector in a private registry and
// serves it through promhttp. Counters are named oauthclient_*_total; the
// single histogram is oauthclient_token_exchange_latency_seconds. Nothing is
// registered in the global default registry.
package prometheus
