package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteSensorMetric records a single sensor measurement.
//
// This is half of the device core's telemetry hook (device.MetricWriter).
// The write is non-blocking, batched and sent asynchronously.
//
// Example:
//
//	client.WriteSensorMetric("env-sim-01", "temperature_c", 23)
//	client.WriteSensorMetric("env-sim-01", "humidity_pct", 61)
func (c *Client) WriteSensorMetric(deviceID string, measurement string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"sensor_metrics",
		map[string]string{
			"device_id":   deviceID,
			"measurement": measurement,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WriteActuatorState records an actuator transition (LED or fan).
// State is written as 0/1 so dashboards can graph duty cycles. Together
// with WriteSensorMetric this satisfies device.MetricWriter.
func (c *Client) WriteActuatorState(deviceID string, actuator string, on bool) {
	if !c.IsConnected() {
		return
	}

	value := 0.0
	if on {
		value = 1.0
	}

	point := write.NewPoint(
		"actuator_state",
		map[string]string{
			"device_id": deviceID,
			"actuator":  actuator,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}
