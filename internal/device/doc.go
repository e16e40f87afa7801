// Package device implements the emulated sensor/actuator node for ClimaSim Core.
//
// The Node is the single owner of all mutable runtime state: the sensor and
// actuator values, the active encryption algorithm, and the bounded encrypted
// history buffer. Every mutation goes through one mutex, whether it comes
// from the periodic update cycle or from an inbound control call.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                             Node                                 │
//	│                                                                  │
//	│  ┌──────────────┐   ┌──────────────┐   ┌─────────────────────┐  │
//	│  │ Update Cycle │   │   Controls   │   │  Settings Mutator   │  │
//	│  │  (node.go)   │   │ (control.go) │   │    (control.go)     │  │
//	│  │              │   │              │   │                     │  │
//	│  │ • readings   │   │ • LED        │   │ • allowFanControl   │  │
//	│  │ • history    │   │ • fan        │   │ • active algorithm  │  │
//	│  │ • freshness  │   │              │   │                     │  │
//	│  └──────┬───────┘   └──────┬───────┘   └──────────┬──────────┘  │
//	│         │                  │                      │              │
//	│         └──────────────────┴──────────────────────┘              │
//	│                            │ one mutex                           │
//	└────────────────────────────│─────────────────────────────────────┘
//	                             ▼
//	         Publisher (WebSocket hub) · Forwarder (MQTT) ·
//	         MetricWriter (InfluxDB) · Recorder (audit log)
//
// # Key Types
//
//   - Node: the state owner; all public methods are thread-safe
//   - State: current actuator/sensor values plus permission flags
//   - History: bounded FIFO log of encrypted reading envelopes
//   - Health: derived data-freshness verdict (never stored)
//
// Collaborators are accepted as narrow interfaces (Publisher, Forwarder,
// MetricWriter, Recorder) so transports stay out of this package. All of
// them are fire-and-forget from the Node's point of view: a failing
// observer never affects core state or the update schedule.
package device
