package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAttentionSample mirrors one attention sample as a time-series point.
//
// The write is non-blocking; points are batched and sent asynchronously.
// course and teacher become tags so dashboards can group by class; the
// timestamp is the sample time (reading start plus delta), not "now".
func (c *Client) WriteAttentionSample(course, teacher string, mean float64, at time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"attention_level",
		map[string]string{
			"course":  course,
			"teacher": teacher,
		},
		map[string]interface{}{
			"mean": mean,
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags, fields and
// timestamp. Used for the per-upload summary measurement.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}, at time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
