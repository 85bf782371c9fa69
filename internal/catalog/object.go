package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vk/fusegrid/internal/ctxlog"
)

// ObjectBackend stores artifacts in an HTTP object store (S3-compatible
// pre-signed endpoints, MinIO gateways, plain WebDAV) as JSON objects at
// BaseURL/<escaped key>.
type ObjectBackend struct {
	BaseURL string
	Client  *http.Client
}

// NewObjectBackend validates baseURL. A nil client means http.DefaultClient.
func NewObjectBackend(baseURL string, client *http.Client) (*ObjectBackend, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse object store URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("object store URL must be http or https, got %q", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ObjectBackend{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}, nil
}

func (o *ObjectBackend) objectURL(key string) string {
	return o.BaseURL + "/" + url.PathEscape(key) + ".json"
}

func (o *ObjectBackend) Load(ctx context.Context, key string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.objectURL(key), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create object download request: %w", err)
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute object download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("object download failed with status: %s", resp.Status)
	}

	var v any
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode object %q: %w", key, err)
	}
	return v, nil
}

func (o *ObjectBackend) Save(ctx context.Context, key string, value any) error {
	logger := ctxlog.FromContext(ctx).With("backend", "object", "key", key)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, o.objectURL(key), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create object upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(data))

	logger.Debug("Uploading artifact.", "size", len(data))
	resp, err := o.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute object upload request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("object upload failed with status: %s", resp.Status)
	}
	logger.Debug("Artifact uploaded.", "status", resp.Status)
	return nil
}

func (o *ObjectBackend) Exists(ctx context.Context, key string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, o.objectURL(key), nil)
	if err != nil {
		return false, err
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return true, nil
	default:
		return false, fmt.Errorf("object lookup failed with status: %s", resp.Status)
	}
}

func (o *ObjectBackend) Describe() string { return "object:" + o.BaseURL }
