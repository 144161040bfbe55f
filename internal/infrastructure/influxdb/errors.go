package influxdb

import "errors"

// Sentinel errors for the attention-sample mirror.
//
// Checked with errors.Is(); a failed mirror never fails the reading upload:
//
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // Run without the time-series mirror
//	}
var (
	// ErrNotConnected indicates the mirror client is not connected.
	// Samples are silently skipped in this state.
	ErrNotConnected = errors.New("influxdb: mirror not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled indicates the sample mirror is disabled in config.
	ErrDisabled = errors.New("influxdb: mirror disabled in configuration")
)
