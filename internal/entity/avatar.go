package entity

import "time"

const (
	MaxImageSize = 5 << 20
)

// Blob - метаданные загруженного файла
type Blob struct {
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	Size        int       `json:"size"`
	ContentType string    `json:"contentType"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type UploadImageRequest struct {
	Data        []byte
	ContentType string
	FileName    string
}

type DownloadedFile struct {
	Data        []byte
	ContentType string
}
