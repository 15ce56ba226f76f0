package genai

import (
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	domerrors "github.com/mapgpt/mapgpt-go/internal/errors"
	"github.com/mapgpt/mapgpt-go/internal/stringutil"
)

const maxErrorBody = 2048

// upstreamTransport rejects non-2xx responses and non-JSON bodies before the
// SDK decodes them, so callers see the upstream status and raw body.
type upstreamTransport struct {
	base http.RoundTripper
}

// newHTTPClient returns a client bounded by timeout whose transport applies
// upstreamTransport on top of base (http.DefaultTransport when nil).
func newHTTPClient(timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &upstreamTransport{base: base},
	}
}

func (t *upstreamTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !isJSON(resp.Header.Get("Content-Type")) {
		return nil, rejectResponse(resp)
	}
	return resp, nil
}

func rejectResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
	return domerrors.NewUpstreamError(serviceName, resp.StatusCode, stringutil.CollapseSpace(string(body)), nil)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
