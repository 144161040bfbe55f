// Package reading holds the attention reading model: the time-series
// documents devices or clients upload for a course session.
package reading

// Level is one attention sample within a reading: a vector of measured
// values and its delta time in seconds relative to the reading start.
type Level struct {
	Levels [][]float64 `json:"levels"`
	Delta  float64     `json:"delta"`
}

// Reading is a set of attention samples taken during a class session.
// StartDate, EndDate and Timestamp are RFC3339; Location is a GeoJSON
// geometry passed through untouched.
type Reading struct {
	ID              string         `json:"id"`
	Owner           string         `json:"owner,omitempty"`
	Location        map[string]any `json:"location,omitempty"`
	StartDate       string         `json:"startDate,omitempty"`
	EndDate         string         `json:"endDate,omitempty"`
	Course          string         `json:"course"`
	Teacher         string         `json:"teacher"`
	Tags            []string       `json:"tags,omitempty"`
	AttentionLevels []Level        `json:"attentionLevels,omitempty"`
	Timestamp       string         `json:"timestamp,omitempty"`
}
