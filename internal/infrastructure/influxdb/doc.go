// Package influxdb provides InfluxDB connectivity for Attention Core.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, attention-sample writing, and health monitoring.
//
// # Purpose
//
// This package mirrors attention readings as time-series points so
// dashboards can chart attention levels per course and teacher without
// paging the document store.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "classense",
//	    Bucket: "attention",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteAttentionSample("LM-101", "smith", 0.72, sampleTime)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps bulk reading uploads from stalling on the mirror.
package influxdb
