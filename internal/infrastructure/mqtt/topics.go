package mqtt

import "fmt"

// Topic prefixes for the climasim MQTT surface.
//
// The device publishes on a flat scheme: climasim/{category}/{device_id}/...
// Subscribers (aggregators, dashboards) never publish back to these topics.
const (
	// TopicPrefix is the base for all climasim topics.
	TopicPrefix = "climasim"

	// TopicPrefixSystem is the base for system presence topics.
	TopicPrefixSystem = "climasim/system"
)

// Topics provides builders for climasim MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// SystemStatus returns the presence topic carrying online/offline status.
// The LWT message is registered on this topic.
//
// Example: climasim/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// DeviceReading returns the topic readings are forwarded on.
//
// Example: climasim/reading/env-sim-01
func (Topics) DeviceReading(deviceID string) string {
	return fmt.Sprintf("%s/reading/%s", TopicPrefix, deviceID)
}
