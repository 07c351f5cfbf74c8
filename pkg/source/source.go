// CLAUDE:SUMMARY Reads a transcription from a local path or an http(s) URL (with retries), unpacking single-file ZIP exports.
package source

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// MaxSize bounds the size of a fetched transcription.
const MaxSize = 64 << 20

// Input is a transcription ready for the pipeline.
type Input struct {
	// Location is the path or URL the input was read from.
	Location string
	// Name is the base file name, used to derive output names.
	Name   string
	Data   []byte
	Digest string
}

// Fetcher reads inputs. The zero value is usable.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Backoff  time.Duration
}

// Fetch reads location, which is either a file path or an http(s) URL.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*Input, error) {
	var (
		data []byte
		name string
		err  error
	)
	if IsURL(location) {
		data, err = f.download(ctx, location)
		name = location
		if u, perr := url.Parse(location); perr == nil {
			name = path.Base(u.Path)
		}
	} else {
		data, err = readFile(location)
		name = filepath.Base(location)
	}
	if err != nil {
		return nil, err
	}

	if isZip(data) {
		entry, inner, err := unzipFirstXML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", location, err)
		}
		data, name = inner, entry
	}

	return &Input{Location: location, Name: name, Data: data, Digest: Digest(data)}, nil
}

// Fetch reads location with a default Fetcher.
func Fetch(ctx context.Context, location string) (*Input, error) {
	var f Fetcher
	return f.Fetch(ctx, location)
}

// IsURL reports whether location is an http or https URL.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Digest returns the hex BLAKE3 digest of data.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func readFile(p string) ([]byte, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if fi.Size() > MaxSize {
		return nil, fmt.Errorf("read input: %s is larger than %d bytes", p, MaxSize)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// download fetches rawURL with retries and exponential backoff.
func (f *Fetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	attempts := f.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := f.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff << uint(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				break
			}
			continue
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSize+1))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if len(data) > MaxSize {
			return nil, fmt.Errorf("download %s: larger than %d bytes", rawURL, MaxSize)
		}
		return data, nil
	}
	return nil, fmt.Errorf("download %s failed: %w", rawURL, lastErr)
}

func isZip(data []byte) bool {
	return bytes.HasPrefix(data, []byte("PK\x03\x04"))
}

// unzipFirstXML returns the name and content of the first .xml entry.
func unzipFirstXML(data []byte) (string, []byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(path.Ext(f.Name), ".xml") {
			continue
		}
		if f.UncompressedSize64 > MaxSize {
			return "", nil, fmt.Errorf("zip entry %s is larger than %d bytes", f.Name, MaxSize)
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(io.LimitReader(rc, MaxSize))
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		return path.Base(f.Name), content, nil
	}
	return "", nil, fmt.Errorf("zip archive holds no .xml file")
}
