package mqtt

import "fmt"

// Topic prefixes for the Attention Core MQTT namespace.
//
// Flat scheme: attention/{category}[/{id}]
const (
	// TopicPrefix is the base for all Attention Core topics.
	TopicPrefix = "attention"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "attention/system"
)

// Topics provides builders for Attention Core MQTT topics. Using these
// helpers keeps topic naming consistent across the codebase.
type Topics struct{}

// Readings returns the default topic classroom devices publish reading
// documents to. Deployments can override it in config.
//
// Example: attention/readings
func (Topics) Readings() string {
	return fmt.Sprintf("%s/readings", TopicPrefix)
}

// ReadingAck returns the topic the ingest bridge acknowledges stored
// readings on, so devices can confirm delivery without polling the API.
//
// Example: attention/readings/ack
func (Topics) ReadingAck() string {
	return fmt.Sprintf("%s/readings/ack", TopicPrefix)
}

// IngestStatus returns the retained status topic for the ingest bridge,
// distinct from the broker-level LWT on SystemStatus.
//
// Example: attention/system/ingest
func (Topics) IngestStatus() string {
	return fmt.Sprintf("%s/ingest", TopicPrefixSystem)
}

// SystemStatus returns the system status topic carrying the online/offline
// payloads and the Last Will message.
//
// Example: attention/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// SystemShutdown returns the shutdown signal topic.
//
// Example: attention/system/shutdown
func (Topics) SystemShutdown() string {
	return fmt.Sprintf("%s/shutdown", TopicPrefixSystem)
}
