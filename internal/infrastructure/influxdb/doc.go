// Package influxdb records climasim sensor telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. Every update
// cycle writes the generated temperature and humidity values as points;
// the non-blocking WriteAPI batches them so a slow or absent InfluxDB
// never delays a sensor tick.
//
// Telemetry is optional. When disabled in config the device runs
// without a client and the core simply skips metric writes.
//
// Write errors surface asynchronously through SetOnError; connection
// and health check errors are returned directly.
package influxdb
