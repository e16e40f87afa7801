// Package mqtt connects climasim to an external MQTT broker.
//
// The device is publish-only on the wire: it forwards every sensor
// reading to an aggregator topic and announces its own presence on
// climasim/system/status. A Last Will and Testament message lets
// subscribers distinguish a crash from a graceful shutdown.
//
// Forwarding is strictly best-effort. The update cycle hands readings to
// ReadingForwarder and moves on; a slow or absent broker never delays a
// sensor tick. The paho client handles reconnection with exponential
// backoff.
package mqtt
