package models

import "io"

// UploadInput describes one object put against the object store.
type UploadInput struct {
	File         io.Reader `json:"file,omitempty"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	Key          string    `json:"key"`
	BucketName   string    `json:"bucket_name"`
	CacheControl string    `json:"cache_control,omitempty"`
}
