package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Fetcher obtains the raw feed document. The returned time is the
// document's modification stamp when the source exposes one; a zero time
// means unknown.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (io.ReadCloser, time.Time, error)
}

type HTTPFetcher struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: 10 * time.Minute},
		Limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, time.Time, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, time.Time{}, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, time.Time{}, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, time.Time{}, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, time.Time{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var modified time.Time
	if header := resp.Header.Get("Last-Modified"); header != "" {
		if parsed, err := http.ParseTime(header); err == nil {
			modified = parsed
		}
	}
	return resp.Body, modified, nil
}

// FileFetcher serves feed documents from the local filesystem.
type FileFetcher struct{}

func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

func (f *FileFetcher) Fetch(_ context.Context, location string) (io.ReadCloser, time.Time, error) {
	file, err := os.Open(location)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("open feed file: %w", err)
	}
	var modified time.Time
	if info, err := file.Stat(); err == nil {
		modified = info.ModTime()
	}
	return file, modified, nil
}
