// Package cache builds Redis connections from a service configuration
// section.
//
// The effective configuration starts from Defaults, takes host and port from
// the REDIS_URL environment variable when it holds a scheme://host:port
// string, and finally applies the service options. Build then opens either a
// dedicated or a persistent (pooled, keyed by persistent_id) connection,
// authenticates when a password is configured and selects the configured
// database, in that order.
package cache
