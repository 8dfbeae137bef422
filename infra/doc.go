// Package infra holds the concrete client adapters built by the service
// container: cache, mail, pdf, mqtt and influx, plus the logging, metrics
// and monitoring backends. Adapters depend only on the core packages.
package infra
