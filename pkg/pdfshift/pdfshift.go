package pdfshift

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrNotConfigured = errors.New("pdfshift api key not configured")

// Renderer turns a publicly reachable HTML page into a PDF.
type Renderer interface {
	RenderURL(ctx context.Context, sourceURL string) ([]byte, error)
}

type Client struct {
	APIKey   string
	Endpoint string
	client   *http.Client
}

func NewClient(apiKey, endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = "https://api.pdfshift.io/v3/convert/pdf"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		APIKey:   apiKey,
		Endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type convertReq struct {
	Source    string `json:"source"`
	Landscape bool   `json:"landscape"`
	UsePrint  bool   `json:"use_print"`
}

func (c *Client) RenderURL(ctx context.Context, sourceURL string) ([]byte, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}
	body, _ := json.Marshal(convertReq{Source: sourceURL})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("api", c.APIKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdfshift: status %d: %s", resp.StatusCode, truncate(data, 200))
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}

// Static returns fixed bytes; used when rendering is stubbed out.
type Static struct {
	PDF []byte
	Err error
}

func (s Static) RenderURL(ctx context.Context, sourceURL string) ([]byte, error) {
	return s.PDF, s.Err
}
