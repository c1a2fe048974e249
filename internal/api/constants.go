package api

import "github.com/vitrinelab/vitrine/internal/media/images"

// API limits and constants.
const (
	// MaxImageSize is the default limit for one uploaded picture (10 MB).
	MaxImageSize = images.DefaultMaxBytes

	// DefaultMaxImages is the default number of pictures per analysis.
	DefaultMaxImages = 10

	// multipartMemory is how much of an upload is buffered in memory
	// before spilling to temporary files.
	multipartMemory = 32 << 20

	// defaultSearchLimit caps taxonomy search results when none is given.
	defaultSearchLimit = 10
)

// Cache-Control header values.
const (
	CacheOneHour = "public, max-age=3600"
	CacheNoStore = "no-store"
)
