package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verihire/verihire/internal/providers/stt"
)

const maxMediaBytes = 20 << 20

// HTTPMediaFetcher resolves media references: inline data URIs are
// decoded in place, anything else is fetched over HTTP. Errors carry the
// same retryable/terminal split as transcription so the orchestrator can
// classify them uniformly.
type HTTPMediaFetcher struct {
	client *http.Client
}

func NewHTTPMediaFetcher() *HTTPMediaFetcher {
	return &HTTPMediaFetcher{client: &http.Client{Timeout: 30 * time.Second}}
}

func (f *HTTPMediaFetcher) Fetch(ctx context.Context, ref string) ([]byte, string, error) {
	if strings.HasPrefix(ref, "data:") {
		return decodeDataURI(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", &stt.TranscriptionError{Retryable: false, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", &stt.TranscriptionError{Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, "", &stt.TranscriptionError{Retryable: true, Err: fmt.Errorf("media fetch: status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &stt.TranscriptionError{Retryable: false, Err: fmt.Errorf("media fetch: status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, "", &stt.TranscriptionError{Retryable: true, Err: err}
	}
	if len(body) == 0 {
		return nil, "", &stt.TranscriptionError{Retryable: false, Err: errors.New("media fetch: empty body")}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func decodeDataURI(ref string) ([]byte, string, error) {
	rest := strings.TrimPrefix(ref, "data:")
	meta, payload, found := strings.Cut(rest, ",")
	if !found {
		return nil, "", &stt.TranscriptionError{Retryable: false, Err: errors.New("malformed data URI")}
	}

	mimeType := strings.TrimSuffix(meta, ";base64")
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", &stt.TranscriptionError{Retryable: false, Err: fmt.Errorf("decode inline media: %w", err)}
	}
	return decoded, mimeType, nil
}
