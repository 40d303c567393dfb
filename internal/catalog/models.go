package catalog

import "time"

// Video is one saved pitch recording in the user-facing catalog. The edit
// model itself is never persisted; only the catalog entry and, after an
// upload, the object key are durable.
type Video struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	MediaURI    string    `json:"media_uri"`
	Duration    float64   `json:"duration"`
	UploadedKey string    `json:"uploaded_key,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
