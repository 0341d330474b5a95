package marketdata

import "time"

// TTL constants for the cached upstream sources.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// TTLMandiPrice - mandi modal prices are published daily; a 6 hour
	// window keeps intraday requests off the API without serving
	// yesterday's price past noon.
	TTLMandiPrice = 6 * time.Hour

	// TTLWeather - current-conditions snapshots go stale quickly.
	TTLWeather = time.Hour
)
