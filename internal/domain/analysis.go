package domain

import "time"

// AnalysisMode selects which remote image analysis operation runs.
type AnalysisMode string

// Analysis modes.
const (
	ModeSingle   AnalysisMode = "single"
	ModeMultiple AnalysisMode = "multiple"
	ModeMenuOCR  AnalysisMode = "menu-ocr"
)

// Valid reports whether m is a known mode.
func (m AnalysisMode) Valid() bool {
	switch m {
	case ModeSingle, ModeMultiple, ModeMenuOCR:
		return true
	}
	return false
}

// AnalysisMethod tags how the backend actually produced a result.
// Values come from the backend and are passed through untouched, so unknown
// tags are legal.
type AnalysisMethod string

// Tags the backend is known to report.
const (
	MethodAIVision               AnalysisMethod = "ai-vision"
	MethodAIVisionMultiple       AnalysisMethod = "ai-vision-multiple"
	MethodAIVisionSingleFallback AnalysisMethod = "ai-vision-single-fallback"
	MethodSmartFallback          AnalysisMethod = "smart-fallback"
	MethodSimpleFallback         AnalysisMethod = "simple-fallback"
)

// MethodInfo is the display copy for an analysis method.
type MethodInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Fallback    bool   `json:"fallback"`
}

var methodInfo = map[AnalysisMethod]MethodInfo{
	MethodAIVision: {
		Title:       "Análise Visual com IA",
		Description: "Produto identificado através da análise visual da imagem.",
	},
	MethodAIVisionMultiple: {
		Title:       "Análise Visual Múltipla com IA",
		Description: "Produto identificado através da análise de múltiplas imagens para maior precisão.",
	},
	MethodAIVisionSingleFallback: {
		Title:       "Análise Visual (Fallback)",
		Description: "Produto identificado com análise de uma imagem após falha na análise múltipla.",
		Fallback:    true,
	},
	MethodSmartFallback: {
		Title:       "Análise Inteligente",
		Description: "Produto criado com base no nome do arquivo e padrões inteligentes.",
		Fallback:    true,
	},
	MethodSimpleFallback: {
		Title:       "Produto Padrão",
		Description: "Produto criado com configurações padrão devido a limitações temporárias.",
		Fallback:    true,
	},
}

// Info returns display copy for m. Unknown tags get a generic entry.
func (m AnalysisMethod) Info() MethodInfo {
	if info, ok := methodInfo[m]; ok {
		return info
	}
	return MethodInfo{Title: "Produto Gerado", Description: "Produto criado automaticamente."}
}

// AnalyzedProduct is the product-shaped object returned by the analysis endpoints.
type AnalyzedProduct struct {
	SKU                    int64          `json:"idsku"`
	Title                  string         `json:"title"`
	ProductType            string         `json:"productType"`
	Price                  float64        `json:"price"`
	Offer                  float64        `json:"offer"`
	Description            string         `json:"description"`
	Status                 ProductStatus  `json:"status"`
	CreatedAt              time.Time      `json:"createdAt,omitzero"`
	AIGenerated            bool           `json:"aiGenerated"`
	AIAnalyzed             bool           `json:"aiAnalyzed"`
	OriginalClassification string         `json:"originalClassification,omitempty"`
	OriginalCategory       string         `json:"originalCategory,omitempty"`
	TotalImagesProcessed   int            `json:"totalImagesProcessed,omitzero"`
	ImagesUsedForAnalysis  int            `json:"imagesUsedForAnalysis,omitzero"`
	AnalysisMethod         AnalysisMethod `json:"analysisMethod,omitempty"`
	RateLimitHit           bool           `json:"rateLimitHit,omitzero"`
}

// MenuSummary holds the counters of a bulk menu extraction.
type MenuSummary struct {
	TotalProductsFound int     `json:"totalProductsFound"`
	TotalProductsSaved int     `json:"totalProductsSaved"`
	OCRMethod          string  `json:"ocrMethod"`
	OCRConfidence      float64 `json:"ocrConfidence"`
}

// MenuBatch is the result of POST /products/bulk-menu-ocr.
// Performance maps timing names (e.g. "totalTimeMs") to milliseconds.
type MenuBatch struct {
	Products    []AnalyzedProduct  `json:"products"`
	Summary     MenuSummary        `json:"summary"`
	Performance map[string]float64 `json:"performance,omitempty"`
}

// TotalTime returns the end-to-end time the backend reported, if any.
func (b *MenuBatch) TotalTime() time.Duration {
	ms, ok := b.Performance["totalTimeMs"]
	if !ok {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// Image is one uploaded picture to be analyzed.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}
