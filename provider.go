package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Fixed generation parameters shared by every backend
const (
	guidanceScale = 7.0
	sampleSteps   = 30
	imageSize     = 512
	promptSuffix  = "hero portrait, dramatic lighting"
)

// GenerationRequest is everything an adapter needs for one attempt
type GenerationRequest struct {
	Template  CharacterTemplate
	Prompt    string
	Fallback  string // returned untouched when generation fails
	ImagePath string // where a successfully decoded image is stored
}

// Generation is the outcome of one attempt
type Generation struct {
	ASCII           string
	UsedPlaceholder bool
}

// ArtProvider produces ASCII art for a template. It never fails: every
// problem is logged and reported as UsedPlaceholder with the fallback text.
type ArtProvider interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) Generation
}

// NewArtProvider picks the adapter for the resolved configuration
func NewArtProvider(cfg AIServiceConfig, transport Transport, logger *slog.Logger) ArtProvider {
	switch cfg.Provider {
	case ProviderStability:
		return &StabilityProvider{cfg: cfg, transport: transport, log: logger}
	case ProviderAutomatic1111:
		return &Automatic1111Provider{cfg: cfg, transport: transport, log: logger}
	default:
		return disabledProvider{}
	}
}

// disabledProvider always answers with the placeholder
type disabledProvider struct{}

func (disabledProvider) Name() string { return ProviderNone.String() }

func (disabledProvider) Generate(_ context.Context, req GenerationRequest) Generation {
	return placeholderResult(req)
}

func placeholderResult(req GenerationRequest) Generation {
	return Generation{ASCII: req.Fallback, UsedPlaceholder: true}
}

// composePrompt joins the template fragment, the user prompt and the
// fixed suffix with ", ", skipping empty segments
func composePrompt(tmpl CharacterTemplate, userPrompt string) string {
	var parts []string
	for _, p := range []string{tmpl.Prompt, userPrompt, promptSuffix} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ensureTrailingSlash lets endpoint paths be appended to a configured host
func ensureTrailingSlash(base string) string {
	if base == "" || strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

// storeImage writes the raw provider image next to the ASCII cache
func storeImage(ctx context.Context, logger *slog.Logger, path string, data []byte) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.WarnContext(ctx, "failed to create image cache directory", "path", path, "error", err)
		return
	}
	if err := writeFileAtomic(path, data); err != nil {
		logger.WarnContext(ctx, "failed to store image", "path", path, "error", err)
		return
	}
	logger.InfoContext(ctx, "stored generated image", "path", path, "size", humanize.Bytes(uint64(len(data))))
}

// logStatus records a non-200 answer; the body is still inspected afterwards
func logStatus(ctx context.Context, logger *slog.Logger, provider string, status int) {
	if status != http.StatusOK {
		logger.WarnContext(ctx, fmt.Sprintf("%s responded with status %d", provider, status))
	}
}
