// Package mqtt builds connected Eclipse Paho clients from a service
// configuration section.
package mqtt
