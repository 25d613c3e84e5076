package wecom

import (
	"io"
	"time"
)

// Media types accepted by the upload endpoint
const (
	MediaTypeFile  = "file"
	MediaTypeImage = "image"
	MediaTypeVoice = "voice"
	MediaTypeVideo = "video"
)

const (
	uploadPath = "/cgi-bin/media/upload"
	getPath    = "/cgi-bin/media/get"
)

// UploadResult is the success envelope of a media upload.
type UploadResult struct {
	Type      string
	MediaID   string
	CreatedAt time.Time
}

type uploadResponse struct {
	ErrCode   int    `json:"errcode"`
	ErrMsg    string `json:"errmsg"`
	Type      string `json:"type"`
	MediaID   string `json:"media_id"`
	CreatedAt string `json:"created_at"`
}

// Media is a downloaded blob. The caller must close Body.
type Media struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 when unknown
	Date          time.Time
	Filename      string
}
