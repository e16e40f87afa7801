package mqtt

import (
	"encoding/json"

	"github.com/openclimate-io/climasim-core/internal/device"
)

// ReadingForwarder pushes sensor readings to the aggregator topic.
// It satisfies device.Forwarder.
//
// Forwarding is best-effort: publish failures are logged at warn level
// and otherwise dropped. The device core already calls Forward from its
// own goroutine, so no additional buffering happens here.
type ReadingForwarder struct {
	client *Client
	topic  string
	qos    byte
}

// NewReadingForwarder creates a forwarder publishing on topic. An empty
// topic selects the default climasim/reading/{device_id} scheme per call.
func NewReadingForwarder(client *Client, topic string, qos byte) *ReadingForwarder {
	return &ReadingForwarder{
		client: client,
		topic:  topic,
		qos:    qos,
	}
}

// Forward publishes the reading as JSON.
func (f *ReadingForwarder) Forward(deviceID string, reading device.Reading) {
	payload, err := json.Marshal(reading)
	if err != nil {
		// Reading is a plain struct; marshalling cannot realistically
		// fail, but never panic inside the forwarding path.
		return
	}

	topic := f.topic
	if topic == "" {
		topic = Topics{}.DeviceReading(deviceID)
	}

	if err := f.client.Publish(topic, payload, f.qos, false); err != nil {
		if logger := f.client.getLogger(); logger != nil {
			logger.Warn("reading forward failed",
				"topic", topic,
				"error", err,
			)
		}
	}
}
