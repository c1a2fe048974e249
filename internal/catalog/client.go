// Package catalog is the HTTP client for the product catalog backend: image
// analysis, product creation, listing and deletion.
package catalog

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/ratelimit"
)

const (
	// Outbound budget per endpoint.
	defaultRPS   = 2.0
	defaultBurst = 4

	// Vision calls are slow.
	defaultTimeout = 90 * time.Second

	// Largest response body we are willing to read.
	maxResponseBytes = 16 << 20
)

// Backend paths.
const (
	pathAnalyzeSingle   = "/products/generate-ai"
	pathAnalyzeMultiple = "/products/generate-ai-multiple"
	pathMenuOCR         = "/products/bulk-menu-ocr"
	pathProducts        = "/products"
)

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *slog.Logger
}

// Client is a rate-limited catalog backend client. It never retries;
// a failed call is reported once and the caller decides what to do.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new catalog client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst < 1 {
		opts.Burst = defaultBurst
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: ratelimit.New(opts.RequestsPerSecond, opts.Burst),
		logger:  opts.Logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// AnalyzeSingle sends one image to the single-image analysis endpoint.
func (c *Client) AnalyzeSingle(ctx context.Context, img domain.Image) (*domain.AnalyzedProduct, error) {
	body, contentType, err := multipartBody("image", []domain.Image{img})
	if err != nil {
		return nil, wrapError("analyzeSingle", "", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, pathAnalyzeSingle, contentType, body)
	if err != nil {
		return nil, wrapError("analyzeSingle", "", err)
	}

	var product domain.AnalyzedProduct
	if err := json.Unmarshal(resp, &product); err != nil {
		return nil, wrapError("analyzeSingle", "", fmt.Errorf("parse response: %w", err))
	}
	return &product, nil
}

// AnalyzeMultiple sends every image, in order, to the multi-image endpoint.
func (c *Client) AnalyzeMultiple(ctx context.Context, imgs []domain.Image) (*domain.AnalyzedProduct, error) {
	if len(imgs) == 0 {
		return nil, wrapError("analyzeMultiple", "", ErrNoImages)
	}
	body, contentType, err := multipartBody("images", imgs)
	if err != nil {
		return nil, wrapError("analyzeMultiple", "", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, pathAnalyzeMultiple, contentType, body)
	if err != nil {
		return nil, wrapError("analyzeMultiple", "", err)
	}

	var product domain.AnalyzedProduct
	if err := json.Unmarshal(resp, &product); err != nil {
		return nil, wrapError("analyzeMultiple", "", fmt.Errorf("parse response: %w", err))
	}
	return &product, nil
}

// ExtractMenu sends a menu photo to the bulk OCR endpoint.
func (c *Client) ExtractMenu(ctx context.Context, img domain.Image) (*domain.MenuBatch, error) {
	body, contentType, err := multipartBody("images", []domain.Image{img})
	if err != nil {
		return nil, wrapError("extractMenu", "", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, pathMenuOCR, contentType, body)
	if err != nil {
		return nil, wrapError("extractMenu", "", err)
	}

	var batch domain.MenuBatch
	if err := json.Unmarshal(resp, &batch); err != nil {
		return nil, wrapError("extractMenu", "", fmt.Errorf("parse response: %w", err))
	}
	if batch.Products == nil {
		batch.Products = []domain.AnalyzedProduct{}
	}
	return &batch, nil
}

// CreateProduct posts a finished product.
func (c *Client) CreateProduct(ctx context.Context, payload *domain.ProductPayload) (*domain.Product, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, wrapError("createProduct", "", fmt.Errorf("encode payload: %w", err))
	}

	resp, err := c.doRequest(ctx, http.MethodPost, pathProducts, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, wrapError("createProduct", "", err)
	}

	var product domain.Product
	if len(bytes.TrimSpace(resp)) > 0 {
		if err := json.Unmarshal(resp, &product); err != nil {
			return nil, wrapError("createProduct", "", fmt.Errorf("parse response: %w", err))
		}
	}
	return &product, nil
}

// ListProducts returns every product in the catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, pathProducts, "", nil)
	if err != nil {
		return nil, wrapError("listProducts", "", err)
	}

	products := []domain.Product{}
	if err := json.Unmarshal(resp, &products); err != nil {
		return nil, wrapError("listProducts", "", fmt.Errorf("parse response: %w", err))
	}
	return products, nil
}

// DeleteProduct removes a product by SKU.
func (c *Client) DeleteProduct(ctx context.Context, sku int64) error {
	id := strconv.FormatInt(sku, 10)
	if _, err := c.doRequest(ctx, http.MethodDelete, pathProducts+"/"+id, "", nil); err != nil {
		return wrapError("deleteProduct", id, err)
	}
	return nil
}

// doRequest executes an HTTP request with rate limiting. Each path has its
// own budget so a burst of uploads does not starve product listing.
func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx, path); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Vitrine/1.0")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	c.logger.Debug("catalog request",
		"method", method,
		"path", path,
		"request_id", requestID,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("catalog response",
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: extractMessage(data)}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Kind = ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Kind = ErrRateLimited
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnprocessableEntity:
		apiErr.Kind = ErrBadRequest
	case resp.StatusCode >= 500:
		apiErr.Kind = ErrServer
	}
	return nil, apiErr
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBody writes imgs as repeated file parts named field. Parts without
// a declared content type are sniffed.
func multipartBody(field string, imgs []domain.Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, img := range imgs {
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image-%d", i+1)
		}
		contentType := img.ContentType
		if contentType == "" {
			contentType = mimetype.Detect(img.Data).String()
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(field), quoteEscaper.Replace(name)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part: %w", err)
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, "", fmt.Errorf("write part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
