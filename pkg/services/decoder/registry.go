package decoder

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Table is the raw output of a format decoder: a header row and string data rows.
type Table struct {
	Headers []string
	Records [][]string
}

// Decoder reads one document format into a Table
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*Table, error)
}

// DecoderFunc adapts a function to Decoder
type DecoderFunc func(ctx context.Context, r io.Reader) (*Table, error)

func (f DecoderFunc) Decode(ctx context.Context, r io.Reader) (*Table, error) { return f(ctx, r) }

// Registry manages format decoders keyed by file extension
type Registry interface {
	// Register adds a decoder for a file extension such as ".csv"
	Register(ext string, dec Decoder) error
	// Lookup returns the decoder for the extension of filename
	Lookup(filename string) (Decoder, error)
	// ListFormats returns the registered extensions
	ListFormats() []string
}

type registry struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewRegistry creates an empty decoder registry
func NewRegistry() Registry {
	return &registry{
		decoders: make(map[string]Decoder),
	}
}

// NewDefaultRegistry creates a registry with the built-in CSV, TSV and XLSX decoders
func NewDefaultRegistry() Registry {
	r := NewRegistry()
	_ = r.Register(".csv", NewCSVDecoder(','))
	_ = r.Register(".tsv", NewCSVDecoder('\t'))
	_ = r.Register(".xlsx", NewXLSXDecoder())
	_ = r.Register(".xlsm", NewXLSXDecoder())
	return r
}

func (r *registry) Register(ext string, dec Decoder) error {
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("extension cannot be empty")
	}
	if dec == nil {
		return fmt.Errorf("decoder cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.decoders[ext]; exists {
		return fmt.Errorf("format %q is already registered", ext)
	}

	r.decoders[ext] = dec
	return nil
}

func (r *registry) Lookup(filename string) (Decoder, error) {
	ext := normalizeExt(filepath.Ext(filename))

	r.mu.RLock()
	dec, exists := r.decoders[ext]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return dec, nil
}

func (r *registry) ListFormats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	formats := make([]string, 0, len(r.decoders))
	for ext := range r.decoders {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
