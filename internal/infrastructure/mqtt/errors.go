package mqtt

import "errors"

// Sentinel errors for broker operations. The ingest bridge checks these
// with errors.Is() to decide between failing startup and logging a drop.
var (
	// ErrNotConnected is returned when attempting operations while the
	// broker connection is down (readings keep queueing on the devices).
	ErrNotConnected = errors.New("mqtt: broker not connected")

	// ErrConnectionFailed is returned when the initial broker connection
	// attempt fails.
	ErrConnectionFailed = errors.New("mqtt: broker connection failed")

	// ErrPublishFailed is returned when an ack or status publish fails.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when subscribing to a reading topic fails.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrUnsubscribeFailed is returned when an unsubscribe operation fails.
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")

	// ErrInvalidQoS is returned when an invalid QoS level is specified.
	// Valid QoS levels are 0, 1, or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
