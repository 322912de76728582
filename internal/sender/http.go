package sender

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

// HTTPSender uploads each delivered file as a single multipart form
// field. The commit message argument to Send is ignored.
type HTTPSender struct {
	URL       string
	Headers   []string // "Name: Value", applied in order
	Method    string
	FieldName string

	Client *http.Client
}

// NewHTTPSender applies the POST / "file" defaults.
func NewHTTPSender(url string, headers []string, method, fieldName string) *HTTPSender {
	if method == "" {
		method = http.MethodPost
	}
	if fieldName == "" {
		fieldName = "file"
	}
	return &HTTPSender{
		URL:       url,
		Headers:   headers,
		Method:    method,
		FieldName: fieldName,
		Client:    &http.Client{Timeout: httpTimeout},
	}
}

func (h *HTTPSender) Mode() string { return "http" }

func (h *HTTPSender) Send(ctx context.Context, filePath, _ string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%w: failed to open %s: %v", ErrDeliveryFailed, filePath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(h.FieldName, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("%w: failed to read %s: %v", ErrDeliveryFailed, filePath, err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, h.Method, h.URL, &body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, hdr := range h.Headers {
		name, value, ok := strings.Cut(hdr, ":")
		if !ok {
			return fmt.Errorf("%w: malformed header %q (expected \"Name: Value\")", ErrDeliveryFailed, hdr)
		}
		req.Header.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s returned status %d: %s",
			ErrDeliveryFailed, h.URL, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
