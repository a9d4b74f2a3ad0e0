// Package media stages uploaded files on local disk, probes videos and hands
// the file to the configured uploader. The staged copy is always removed.
package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"videotube/pkg/apierror"
	"videotube/pkg/metrics"
)

type Kind string

const (
	KindVideo     Kind = "videos"
	KindThumbnail Kind = "thumbnails"
	KindAvatar    Kind = "avatars"
	KindCover     Kind = "covers"
)

var ErrUnavailable = apierror.New(http.StatusServiceUnavailable, "Media uploads are not configured")

type Uploader interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// Prober reads the duration in seconds of a media file.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

type Uploaded struct {
	URL      string
	Key      string
	Duration float64
}

type Host struct {
	uploader Uploader
	prober   Prober
	tempDir  string
}

// NewHost returns a host that fails every upload with ErrUnavailable when
// uploader is nil. A nil prober leaves durations at zero.
func NewHost(uploader Uploader, prober Prober, tempDir string) *Host {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Host{uploader: uploader, prober: prober, tempDir: tempDir}
}

func (h *Host) Enabled() bool {
	return h != nil && h.uploader != nil
}

// Store stages fh, probes it when it is a video and uploads it under
// kind/<uuid><ext>.
func (h *Host) Store(ctx context.Context, kind Kind, fh *multipart.FileHeader) (Uploaded, error) {
	if !h.Enabled() {
		return Uploaded{}, ErrUnavailable
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	localPath, err := h.stage(fh, ext)
	if err != nil {
		return Uploaded{}, err
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", localPath).Msg("Failed to remove staged upload")
		}
	}()

	var out Uploaded
	if kind == KindVideo && h.prober != nil {
		out.Duration, err = h.prober.Duration(ctx, localPath)
		if err != nil {
			log.Warn().Err(err).Str("file", fh.Filename).Msg("Failed to probe video duration")
			return Uploaded{}, apierror.BadRequest("Could not read the video file")
		}
	}

	key := fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), ext)
	out.URL, err = h.uploader.Upload(ctx, localPath, key)
	if err != nil {
		metrics.MediaUploads.WithLabelValues(string(kind), "error").Inc()
		return Uploaded{}, apierror.Wrap(http.StatusBadGateway, "Failed to upload "+string(kind), err)
	}
	metrics.MediaUploads.WithLabelValues(string(kind), "ok").Inc()
	out.Key = key

	log.Debug().Str("kind", string(kind)).Str("key", key).Msg("Media uploaded")
	return out, nil
}

// Discard deletes uploads whose record was never saved. Failures are only
// logged; the caller is already returning its own error.
func (h *Host) Discard(ctx context.Context, uploads ...Uploaded) {
	if !h.Enabled() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, u := range uploads {
		if u.Key == "" {
			continue
		}
		if err := h.uploader.Delete(ctx, u.Key); err != nil {
			log.Warn().Err(err).Str("key", u.Key).Msg("Failed to discard orphaned upload")
			continue
		}
		log.Debug().Str("key", u.Key).Msg("Media discarded")
	}
}

func (h *Host) stage(fh *multipart.FileHeader, ext string) (string, error) {
	if err := os.MkdirAll(h.tempDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.CreateTemp(h.tempDir, "upload-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("save uploaded file: %w", err)
	}
	return out.Name(), nil
}
