package wxwork

import (
	"encoding/json"
	"time"

	"github.com/gobeaver/filekit-wxwork/filekit"
)

// EntryType tells files from synthetic directories.
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
)

// Record is the cached metadata of one path. Only file records carry a
// MediaID; directories exist solely in the cache.
type Record struct {
	Path      string            `json:"path"`
	Type      EntryType         `json:"type"`
	Dirname   string            `json:"dirname"`
	Basename  string            `json:"basename"`
	Extension string            `json:"extension"`
	Filename  string            `json:"filename"`
	MediaID   string            `json:"media_id,omitempty"`
	Size      int64             `json:"size,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"`
	MimeType  string            `json:"mimetype,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IsDir reports whether r is a directory record.
func (r *Record) IsDir() bool { return r.Type == TypeDir }

// LastModified converts Timestamp.
func (r *Record) LastModified() time.Time {
	if r.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(r.Timestamp, 0)
}

// File converts the record to the filekit representation.
func (r *Record) File() filekit.File {
	return filekit.File{
		Name:        r.Basename,
		Path:        r.Path,
		Size:        r.Size,
		ModTime:     r.LastModified(),
		IsDir:       r.IsDir(),
		ContentType: r.MimeType,
		Metadata:    r.Metadata,
	}
}

// setPath re-derives every path field from p.
func (r *Record) setPath(p string) {
	info := filekit.SplitPath(p)
	r.Path = info.Path
	r.Dirname = info.Dirname
	r.Basename = info.Basename
	r.Extension = info.Extension
	r.Filename = info.Filename
}

func (r *Record) clone() *Record {
	c := *r
	if r.Metadata != nil {
		c.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func newDirRecord(p string, now time.Time) *Record {
	r := &Record{Type: TypeDir, Timestamp: now.Unix()}
	r.setPath(p)
	return r
}

// decodeRecord returns false for anything that is not a well-formed record.
func decodeRecord(data []byte) (*Record, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false
	}
	if r.Type != TypeFile && r.Type != TypeDir {
		return nil, false
	}
	return &r, true
}
