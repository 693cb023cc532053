// Package fastdl fetches single files from a game server's FastDL mirror.
package fastdl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"reployer/internal/providers"
	"reployer/internal/structures"
	"time"
)

const (
	chunkSize       = 8192
	defaultFilename = "downloaded_file"
	defaultTimeout  = 10 * time.Minute
)

var (
	ErrInvalidURL = errors.New("invalid download url")
	ErrBadStatus  = errors.New("unexpected download status")
)

// ProgressFunc receives the bytes written so far and the percentage, which
// stays 0 when the server sends no length.
type ProgressFunc func(downloaded, total int64, percent int)

type Downloader struct {
	conf   *structures.Config
	logger providers.Logger
	client *http.Client
}

func NewDownloader(conf *structures.Config, logger providers.Logger) *Downloader {
	timeout := conf.Download.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Downloader{
		conf:   conf,
		logger: logger,
		client: &http.Client{Timeout: timeout},
	}
}

// Download streams rawURL into the download directory and returns the saved
// path. A cancelled or failed transfer leaves no partial file behind.
func (d *Downloader) Download(ctx context.Context, rawURL string, progress ProgressFunc) (string, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}

	savePath := filepath.Join(d.conf.Download.Dir, Filename(u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	d.logger.Infof(providers.TypeDownload, "Downloading %s to %s", u, savePath)

	file, err := os.Create(savePath)
	if err != nil {
		return "", err
	}

	written, err := copyChunks(ctx, file, resp.Body, resp.ContentLength, progress)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(savePath)
		if ctx.Err() != nil {
			d.logger.Warnf(providers.TypeDownload, "Download of %s cancelled", u)
			return "", ctx.Err()
		}
		d.logger.Errorf(providers.TypeDownload, "Download of %s failed: %s", u, err)
		return "", err
	}

	d.logger.Infof(providers.TypeDownload, "Download complete, %d bytes saved to %s", written, savePath)
	return savePath, nil
}

func copyChunks(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			if progress != nil {
				progress(written, total, percent(written, total))
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

func percent(done, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(done * 100 / total)
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// Filename is the last path element of u, or a fixed name when u has none.
func Filename(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return defaultFilename
	}
	return name
}
