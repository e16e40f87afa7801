package device

import "time"

// EvaluateHealth derives a data-freshness verdict from the time of the last
// state update.
//
// It is a pure function of its inputs: callers pass the clock reading, which
// keeps the verdict deterministic under test. A zero lastUpdate means the
// node has never produced a reading and yields status unknown with a nil
// age. Otherwise the age is compared against maxAge: within the threshold is
// ok, beyond it is stale.
func EvaluateHealth(lastUpdate time.Time, maxAge time.Duration, now time.Time) Health {
	if lastUpdate.IsZero() {
		return Health{
			Status:  HealthUnknown,
			IsFresh: false,
		}
	}

	age := now.Sub(lastUpdate).Milliseconds()
	fresh := age <= maxAge.Milliseconds()

	status := HealthStale
	if fresh {
		status = HealthOK
	}

	ts := lastUpdate
	return Health{
		Status:     status,
		AgeMS:      &age,
		IsFresh:    fresh,
		LastUpdate: &ts,
	}
}
