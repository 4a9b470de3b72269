// Package ocrspace calls the OCR.space parse API to retrieve raw text for a
// scanned document. The service does the OCR; this client only moves bytes.
package ocrspace

import (
	"context"
	"encoding/base64"
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

	"github.com/mariner-tools/certtrack/constants"
)

const defaultEndpoint = "https://api.ocr.space/parse/image"

type Config struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
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
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: logger,
	}
}

func (c *Client) Name() string { return "ocrspace" }

// response mirrors the OCR.space parse payload. ErrorMessage may be a string
// or an array of strings depending on the failure.
type response struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

// FetchText uploads the document as a base64 data URL and returns the parsed
// text of the first result.
func (c *Client) FetchText(ctx context.Context, path string) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return "", fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
	mimeType := "application/pdf"
	fileType := "PDF"
	if format == constants.IMAGE {
		mimeType = "image/png"
		fileType = "PNG"
	}

	form := url.Values{}
	form.Set("base64Image", "data:"+mimeType+";base64,"+base64.StdEncoding.EncodeToString(raw))
	form.Set("apikey", c.cfg.APIKey)
	form.Set("language", "eng")
	form.Set("isOverlayRequired", "false")
	form.Set("filetype", fileType)
	form.Set("detectOrientation", "true")
	form.Set("scale", "true")
	// Engine 2 is the more accurate OCR engine.
	form.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.log.Info("ocrspace.request", "req_id", reqID, "file", filepath.Base(path), "bytes", len(raw))

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Error("ocrspace.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, _ := io.ReadAll(resp.Body)
	c.log.Info("ocrspace.response", "req_id", reqID, "status", resp.StatusCode, "bytes", len(body), "elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode ocrspace response: %w", err)
	}
	// The service reports processing failures in-band with a 200; any parsed
	// text alongside the flag is partial at best and must not pass as success.
	if out.IsErroredOnProcessing {
		if msg := errorMessage(out.ErrorMessage); msg != "" {
			return "", fmt.Errorf("ocrspace: %s", msg)
		}
		return "", fmt.Errorf("ocrspace: errored on processing")
	}
	if len(out.ParsedResults) == 0 {
		if msg := errorMessage(out.ErrorMessage); msg != "" {
			return "", fmt.Errorf("ocrspace: %s", msg)
		}
		return "", fmt.Errorf("ocrspace: no text found")
	}
	return out.ParsedResults[0].ParsedText, nil
}

func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return string(raw)
}
