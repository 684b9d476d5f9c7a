package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"
	"social-scheduler/infrastructure/logger"
)

// Fetcher downloads media referenced by payload URLs, optionally keeping a copy in an archive.
type Fetcher struct {
	httpClient *http.Client
	maxBytes   int64
	archive    repository.IMediaArchive
}

func NewFetcher(maxBytes int64, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Fetcher{httpClient: &http.Client{Timeout: timeout}, maxBytes: maxBytes}
}

// WithArchive stores every fetched asset; archive failures are logged and ignored.
func (f *Fetcher) WithArchive(archive repository.IMediaArchive) *Fetcher {
	f.archive = archive
	return f
}

// Fetch returns an error of the form "Failed to fetch <label> file: <status text>" when the
// source answers with a non-2xx status.
func (f *Fetcher) Fetch(ctx context.Context, label, url string) (*model.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch %s file: %w", label, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch %s file: %w", label, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("Failed to fetch %s file: %s", label, http.StatusText(resp.StatusCode))
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch %s file: %w", label, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("Failed to fetch %s file: exceeds %d bytes", label, f.maxBytes)
	}

	m := &model.Media{SourceURL: url, ContentType: resp.Header.Get("Content-Type"), Data: data}
	if m.ContentType == "" {
		m.ContentType = http.DetectContentType(data)
	}
	f.archiveCopy(ctx, label, m)
	return m, nil
}

func (f *Fetcher) archiveCopy(ctx context.Context, label string, m *model.Media) {
	if f.archive == nil {
		return
	}
	sum := sha256.Sum256([]byte(m.SourceURL))
	key := path.Join(label, hex.EncodeToString(sum[:]))
	location, err := f.archive.Save(ctx, key, m)
	if err != nil {
		logger.GetLogger().WithField("error", err).WithField("key", key).Warn("media archive failed")
		return
	}
	logger.GetLogger().WithField("location", location).Debug("media archived")
}
