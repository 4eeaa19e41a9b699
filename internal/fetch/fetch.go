package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrDownload wraps any failure to retrieve a CV document.
var ErrDownload = errors.New("cv download failed")

// maxDocumentBytes caps a single CV download.
const maxDocumentBytes = 20 << 20

// Fetcher downloads CV documents over HTTP.
type Fetcher struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func New(timeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// Download retrieves the document at url. Any transport or status failure is
// reported as ErrDownload so callers can map it onto a stable error state.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: create request: %v", ErrDownload, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Warn("cv download failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warn("cv download bad status",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return nil, "", fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read body: %v", ErrDownload, err)
	}
	if len(body) > maxDocumentBytes {
		return nil, "", fmt.Errorf("%w: document exceeds %d bytes", ErrDownload, maxDocumentBytes)
	}

	contentType := resp.Header.Get("Content-Type")

	f.logger.Debug("cv downloaded",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.String("content_type", contentType),
	)

	return body, contentType, nil
}
