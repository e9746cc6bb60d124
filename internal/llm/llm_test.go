package llm

import (
	"errors"
	"testing"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func TestNormalizeImage(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		declared string
		want     string
		wantErr  bool
	}{
		{"declared jpeg", jpegHeader, "image/jpeg", "image/jpeg", false},
		{"jpg alias", jpegHeader, "image/jpg", "image/jpeg", false},
		{"declared with params", pngHeader, "image/png; charset=binary", "image/png", false},
		{"sniffed png", pngHeader, "", "image/png", false},
		{"sniffed jpeg from octet-stream", jpegHeader, "application/octet-stream", "image/jpeg", false},
		{"gif rejected", []byte("GIF89a......"), "image/gif", "", true},
		{"text rejected", []byte("hello world"), "", "", true},
		{"empty rejected", nil, "image/png", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeImage(tc.data, tc.declared)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.MimeType != tc.want {
				t.Errorf("MimeType = %q, want %q", got.MimeType, tc.want)
			}
		})
	}
}

func TestNormalizeImageUnsupportedSentinel(t *testing.T) {
	_, err := NormalizeImage([]byte("GIF89a......"), "")
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("err = %v, want ErrUnsupportedImage", err)
	}
}

func TestPromptsWithDefaults(t *testing.T) {
	p := Prompts{Assistant: "custom"}.WithDefaults()
	if p.Assistant != "custom" {
		t.Errorf("Assistant = %q", p.Assistant)
	}
	if p.ImageAnalysis != DefaultPrompts().ImageAnalysis {
		t.Error("ImageAnalysis should fall back to the default prompt")
	}
}
