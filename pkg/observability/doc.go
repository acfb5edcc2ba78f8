/*
Package observability turns the assistant's lifecycle hooks into Prometheus
metrics and structured log lines.
*/
package observability
