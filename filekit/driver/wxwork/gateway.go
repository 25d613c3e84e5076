package wxwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/gobeaver/filekit-wxwork/filekit"
	"github.com/gobeaver/filekit-wxwork/wecom"
)

// Blob is a downloaded file. The caller closes Body.
type Blob struct {
	Body         io.ReadCloser
	ContentType  string
	Size         int64 // -1 when unknown
	LastModified time.Time
}

// Gateway moves bytes to and from the media API. It never caches content.
type Gateway struct {
	conn    *connector
	logger  zerolog.Logger
	metrics Metrics
}

// Upload stores r as a file media named after the last element of pathHint.
func (g *Gateway) Upload(ctx context.Context, pathHint string, r io.Reader) (string, error) {
	client, err := g.conn.get(ctx)
	if err != nil {
		return "", err
	}

	name := filekit.SplitPath(pathHint).Basename
	start := time.Now()
	res, err := client.UploadMedia(ctx, wecom.MediaTypeFile, name, r)
	g.metrics.RemoteRequest("upload", status(err), time.Since(start))
	if err != nil {
		return "", err
	}

	g.logger.Debug().Str("path", pathHint).Str("media_id", res.MediaID).Msg("uploaded")
	return res.MediaID, nil
}

// Fetch opens the blob behind mediaID. A media id the platform no longer
// knows yields an error matching filekit.ErrNotExist.
func (g *Gateway) Fetch(ctx context.Context, mediaID string) (*Blob, error) {
	client, err := g.conn.get(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	m, err := client.GetMedia(ctx, mediaID)
	g.metrics.RemoteRequest("fetch", status(err), time.Since(start))
	if err != nil {
		if errors.Is(err, wecom.ErrMediaNotFound) {
			return nil, fmt.Errorf("%w: %w", filekit.ErrNotExist, err)
		}
		return nil, err
	}

	return &Blob{
		Body:         m.Body,
		ContentType:  m.ContentType,
		Size:         m.ContentLength,
		LastModified: m.Date,
	}, nil
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, wecom.ErrUploadRejected):
		return "rejected"
	case errors.Is(err, wecom.ErrMediaNotFound):
		return "not_found"
	default:
		return "error"
	}
}
