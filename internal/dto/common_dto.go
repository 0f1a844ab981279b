package dto

type ErrorResponse struct {
	Error   bool     `json:"error"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Store     string `json:"store"`
	Scheduled int    `json:"scheduled"`
}

// FormConfig is the read-only vocabulary the submission form is built from.
type FormConfig struct {
	RelationshipTypes []string          `json:"relationshipTypes"`
	DurationBuckets   []string          `json:"durationBuckets"`
	Tags              map[string]string `json:"tags"`
	MaxFiles          int               `json:"maxFiles"`
	MaxFileSize       int64             `json:"maxFileSize"`
	MaxContentLength  int               `json:"maxContentLength"`
	MinQueryLength    int               `json:"minQueryLength"`
}
