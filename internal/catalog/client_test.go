package catalog

import (
	"context"
	"encoding/json/v2"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/logger"
)

// Smallest valid PNG: 1x1 transparent pixel.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Options{
		BaseURL:           server.URL + "/",
		RequestsPerSecond: 1000,
		Burst:             100,
		Logger:            logger.Discard(),
	})
	t.Cleanup(client.Close)
	return client
}

func TestClient_AnalyzeSingle(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products/generate-ai", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["image"]
		require.Len(t, files, 1)
		assert.Equal(t, "caneca.png", files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"idsku":7,"title":"Caneca","productType":"souvenir","price":35.5,`+
			`"offer":30,"description":"Caneca de cerâmica","status":"pending","aiGenerated":true,`+
			`"aiAnalyzed":true,"originalClassification":"Artesanato","originalCategory":"Cerâmica",`+
			`"analysisMethod":"ai-vision"}`)
	})

	product, err := client.AnalyzeSingle(context.Background(), domain.Image{Name: "caneca.png", Data: pngPixel})
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Caneca", product.Title)
	assert.Equal(t, 35.5, product.Price)
	assert.Equal(t, domain.MethodAIVision, product.AnalysisMethod)
	assert.Equal(t, "Cerâmica", product.OriginalCategory)
}

func TestClient_AnalyzeMultiple_KeepsOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/generate-ai-multiple", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		files := r.MultipartForm.File["images"]
		require.Len(t, files, 3)
		assert.Equal(t, "a.png", files[0].Filename)
		assert.Equal(t, "b.jpg", files[1].Filename)
		assert.Equal(t, "image-3", files[2].Filename)
		assert.Equal(t, "image/jpeg", files[1].Header.Get("Content-Type"))

		io.WriteString(w, `{"title":"Boné","analysisMethod":"ai-vision-single-fallback","totalImagesProcessed":3,"imagesUsedForAnalysis":1}`)
	})

	product, err := client.AnalyzeMultiple(context.Background(), []domain.Image{
		{Name: "a.png", Data: pngPixel},
		{Name: "b.jpg", ContentType: "image/jpeg", Data: []byte("not really a jpeg")},
		{Data: pngPixel},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MethodAIVisionSingleFallback, product.AnalysisMethod)
	assert.Equal(t, 3, product.TotalImagesProcessed)
	assert.Equal(t, 1, product.ImagesUsedForAnalysis)
}

func TestClient_AnalyzeMultiple_NoImages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.AnalyzeMultiple(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestClient_ExtractMenu(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/bulk-menu-ocr", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Len(t, r.MultipartForm.File["images"], 1)

		io.WriteString(w, `{"products":[{"title":"X-Burger","price":25},{"title":"Suco","price":8}],`+
			`"summary":{"totalProductsFound":2,"totalProductsSaved":2,"ocrMethod":"vision","ocrConfidence":0.93},`+
			`"performance":{"ocrTimeMs":800,"totalTimeMs":1200}}`)
	})

	batch, err := client.ExtractMenu(context.Background(), domain.Image{Name: "menu.png", Data: pngPixel})
	require.NoError(t, err)

	require.Len(t, batch.Products, 2)
	assert.Equal(t, "X-Burger", batch.Products[0].Title)
	assert.Equal(t, 2, batch.Summary.TotalProductsSaved)
	assert.InDelta(t, 0.93, batch.Summary.OCRConfidence, 1e-9)
	assert.Equal(t, 1200.0, batch.Performance["totalTimeMs"])
}

func TestClient_ExtractMenu_EmptyProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"summary":{"totalProductsFound":0}}`)
	})

	batch, err := client.ExtractMenu(context.Background(), domain.Image{Data: pngPixel})
	require.NoError(t, err)
	assert.NotNil(t, batch.Products)
	assert.Empty(t, batch.Products)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantErr     error
		wantMessage string
	}{
		{"message field", http.StatusBadRequest, `{"message":"Imagem inválida"}`, ErrBadRequest, "Imagem inválida"},
		{"error string", http.StatusInternalServerError, `{"error":"OpenAI indisponível"}`, ErrServer, "OpenAI indisponível"},
		{"nested error", http.StatusBadGateway, `{"error":{"message":"upstream timeout"}}`, ErrServer, "upstream timeout"},
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited, ""},
		{"not found", http.StatusNotFound, `<html>nope</html>`, ErrNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.statusCode)
				io.WriteString(w, tt.body)
			})

			_, err := client.AnalyzeSingle(context.Background(), domain.Image{Data: pngPixel})
			require.Error(t, err)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMessage, Message(err))
			assert.Equal(t, int32(1), calls.Load(), "no retries")

			var opErr *Error
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, "analyzeSingle", opErr.Op)
		})
	}
}

func TestClient_CreateProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.UnmarshalRead(r.Body, &body))
		assert.Equal(t, "Suco de Laranja", body["title"])
		assert.Equal(t, 16.0, body["idca"])
		assert.Nil(t, body["include"])
		assert.Contains(t, body, "include")
		assert.Equal(t, "onion", body["remove"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"idsku":101,"title":"Suco de Laranja","status":"pending"}`)
	})

	remove := "onion"
	product, err := client.CreateProduct(context.Background(), &domain.ProductPayload{
		Title:            "Suco de Laranja",
		ProductType:      "menu",
		CategoryID:       16,
		ClassificationID: 6,
		PartnerID:        1,
		Measure:          "un",
		Price:            12.5,
		Remove:           &remove,
		Status:           domain.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(101), product.SKU)
}

func TestClient_CreateProduct_EmptyBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	product, err := client.CreateProduct(context.Background(), &domain.ProductPayload{Title: "Anything"})
	require.NoError(t, err)
	assert.NotNil(t, product)
}

func TestClient_ListAndDelete(t *testing.T) {
	var deleted string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `[{"idsku":1,"title":"Caneca","productType":"souvenir","price":30,"offer":25,"status":"released"}]`)
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		}
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, domain.StatusReleased, products[0].Status)

	require.NoError(t, client.DeleteProduct(context.Background(), 1))
	assert.Equal(t, "/products/1", deleted)
}

func TestClient_DeleteProduct_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Produto não encontrado"}`)
	})

	err := client.DeleteProduct(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "deleteProduct [99]")
}

func TestClient_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListProducts(ctx)
	assert.Error(t, err)
}
