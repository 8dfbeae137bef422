// Package eventbus provides a small in-process publish/subscribe bus. The
// service container publishes one event per build attempt on it.
package eventbus
