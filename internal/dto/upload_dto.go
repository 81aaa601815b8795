package dto

// UploadResponse describes a stored submission file.
type UploadResponse struct {
	FileName  string `json:"fileName"`
	Path      string `json:"path"`
	MimeType  string `json:"mimeType"`
	SizeBytes int64  `json:"sizeBytes"`
	Checksum  string `json:"checksum"`
}
