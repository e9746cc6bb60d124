package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrEmptyResponse    = errors.New("model returned no candidates")
	ErrUnsupportedImage = errors.New("unsupported image type: only jpg, jpeg and png are accepted")
)

// Generator is a hosted model that can describe a medical image and answer
// a single free-text question. Each call is independent of previous ones.
type Generator interface {
	AnalyzeImage(ctx context.Context, image ImageInput) (string, error)
	Answer(ctx context.Context, userText string) (string, error)
}

type ImageInput struct {
	Data     []byte
	MimeType string
}

// Sampling holds the generation parameters sent with every request.
type Sampling struct {
	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"top_p"`
	TopK            int     `yaml:"top_k"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

func DefaultSampling() Sampling {
	return Sampling{
		Temperature:     1,
		TopP:            0.95,
		TopK:            64,
		MaxOutputTokens: 8192,
	}
}

var acceptedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// NormalizeImage resolves the MIME type of an uploaded image from the declared
// value or, when that is missing or generic, from the content itself. Only
// JPEG and PNG pass.
func NormalizeImage(data []byte, declared string) (ImageInput, error) {
	if len(data) == 0 {
		return ImageInput{}, errors.New("image is empty")
	}

	mimeType := stripParams(declared)
	if mimeType == "image/jpg" || mimeType == "image/pjpeg" {
		mimeType = "image/jpeg"
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = stripParams(http.DetectContentType(data))
	}
	if !acceptedMimeTypes[mimeType] {
		return ImageInput{}, ErrUnsupportedImage
	}

	return ImageInput{Data: data, MimeType: mimeType}, nil
}

func stripParams(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = strings.TrimSpace(mimeType[:idx])
	}
	return strings.ToLower(mimeType)
}
