package models

import "io"

// PhotoUpload is an inbound photo file attached to a submission
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64 // -1 when unknown
	Body        io.Reader
}
