// Package adobe drives the Adobe PDF Services extract flow: upload the PDF
// as an asset, submit an extract job, poll it, and pull the text elements
// out of the structuredData.json in the result archive.
package adobe

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL = "https://pdf-services.adobe.io"
	tokenPath      = "/token"
	assetsPath     = "/assets"
	extractPath    = "/operation/extractpdf"
)

type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
}

type Client struct {
	cfg Config
	hc  *http.Client
	log *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: logger,
	}
}

func (c *Client) Name() string { return "adobe" }

// FetchText runs the full extract flow for one PDF and returns the
// concatenated text elements.
func (c *Client) FetchText(ctx context.Context, path string) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()
	c.log.Info("adobe.extract.start", "req_id", reqID, "file", filepath.Base(path))

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("adobe token: %w", err)
	}

	assetID, uploadURI, err := c.createAsset(ctx, token)
	if err != nil {
		return "", fmt.Errorf("adobe create asset: %w", err)
	}
	if err := c.uploadAsset(ctx, uploadURI, path); err != nil {
		return "", fmt.Errorf("adobe upload: %w", err)
	}

	pollURL, err := c.submitExtract(ctx, token, assetID)
	if err != nil {
		return "", fmt.Errorf("adobe submit: %w", err)
	}

	downloadURI, err := c.poll(ctx, token, pollURL)
	if err != nil {
		return "", fmt.Errorf("adobe poll: %w", err)
	}

	text, err := c.downloadText(ctx, downloadURI)
	if err != nil {
		return "", fmt.Errorf("adobe download: %w", err)
	}

	c.log.Info("adobe.extract.ok", "req_id", reqID, "text_len", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.doJSON(req, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return out.AccessToken, nil
}

func (c *Client) createAsset(ctx context.Context, token string) (assetID, uploadURI string, err error) {
	body := map[string]string{"mediaType": "application/pdf"}
	bs, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+assetsPath, bytes.NewReader(bs))
	if err != nil {
		return "", "", err
	}
	c.setAuth(req, token)
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		AssetID   string `json:"assetID"`
		UploadURI string `json:"uploadUri"`
	}
	if err := c.doJSON(req, &out); err != nil {
		return "", "", err
	}
	return out.AssetID, out.UploadURI, nil
}

func (c *Client) uploadAsset(ctx context.Context, uploadURI, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURI, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) submitExtract(ctx context.Context, token, assetID string) (string, error) {
	body := map[string]any{
		"assetID":           assetID,
		"elementsToExtract": []string{"text"},
	}
	bs, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+extractPath, bytes.NewReader(bs))
	if err != nil {
		return "", err
	}
	c.setAuth(req, token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("missing job location header")
	}
	return loc, nil
}

func (c *Client) poll(ctx context.Context, token, pollURL string) (string, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
		if err != nil {
			return "", err
		}
		c.setAuth(req, token)

		var out struct {
			Status  string `json:"status"`
			Error   *struct {
				Message string `json:"message"`
			} `json:"error"`
			Resource struct {
				DownloadURI string `json:"downloadUri"`
			} `json:"resource"`
			Content struct {
				DownloadURI string `json:"downloadUri"`
			} `json:"content"`
		}
		if err := c.doJSON(req, &out); err != nil {
			return "", err
		}

		switch out.Status {
		case "done":
			if out.Resource.DownloadURI != "" {
				return out.Resource.DownloadURI, nil
			}
			return out.Content.DownloadURI, nil
		case "failed":
			if out.Error != nil {
				return "", fmt.Errorf("job failed: %s", out.Error.Message)
			}
			return "", fmt.Errorf("job failed")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// downloadText fetches the result archive and concatenates the Text of each
// element in structuredData.json.
func (c *Client) downloadText(ctx context.Context, downloadURI string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURI, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open result archive: %w", err)
	}

	var structured struct {
		Elements []struct {
			Text string `json:"Text"`
		} `json:"elements"`
	}
	for _, f := range zr.File {
		if f.Name != "structuredData.json" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		err = json.NewDecoder(rc).Decode(&structured)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("decode structuredData.json: %w", err)
		}

		var b strings.Builder
		for _, el := range structured.Elements {
			if el.Text != "" {
				b.WriteString(el.Text)
				b.WriteString("\n")
			}
		}
		return b.String(), nil
	}
	return "", fmt.Errorf("structuredData.json not found in result archive")
}

func (c *Client) setAuth(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-API-Key", c.cfg.ClientID)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	reqID := uuid.New().String()
	start := time.Now()

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Error("adobe.http.send_error", "req_id", reqID, "url", req.URL.Path, "error", err)
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	c.log.Debug("adobe.http.response", "req_id", reqID, "url", req.URL.Path, "status", resp.StatusCode, "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
