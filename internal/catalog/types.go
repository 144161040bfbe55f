// Package catalog holds the descriptive entities readings refer to: tags,
// teachers and courses. Their identifiers are caller-supplied (a tag name, a
// course code) and double as the record ID.
package catalog

// Tag is a label attached to readings. Tags may reference other tags to
// form groupings.
type Tag struct {
	ID        string   `json:"id"`
	Owner     string   `json:"owner,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// Teacher identifies a class giver and the courses they teach.
type Teacher struct {
	ID          string   `json:"id"`
	Owner       string   `json:"owner,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Courses     []string `json:"courses,omitempty"`
	Timestamp   string   `json:"timestamp,omitempty"`
}

// Course is a teaching unit; the ID is the institution's course code.
type Course struct {
	ID               string  `json:"id"`
	Owner            string  `json:"owner,omitempty"`
	Name             string  `json:"name,omitempty"`
	Description      string  `json:"description,omitempty"`
	NumberOfSessions float64 `json:"numberOfSessions,omitempty"`
	HoursPerSession  float64 `json:"hoursPerSession,omitempty"`
	Timestamp        string  `json:"timestamp,omitempty"`
}
