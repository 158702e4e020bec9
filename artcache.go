package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// artState is a step in resolving art for one request
type artState int

const (
	stateASCIIHit artState = iota
	stateImageRebuild
	stateMissGenerating
	stateDone
)

// String returns the state name used in logs
func (s artState) String() string {
	switch s {
	case stateASCIIHit:
		return "ascii_hit"
	case stateImageRebuild:
		return "image_rebuild"
	case stateMissGenerating:
		return "miss_generating"
	default:
		return "done"
	}
}

// ArtManager attaches ASCII art to characters. It owns both cache tiers:
// the ASCII text under {cacheDir}/ascii and raw images under
// {cacheDir}/images, sharing one filename stem per (template, prompt).
type ArtManager struct {
	asciiDir string
	imageDir string
	provider ArtProvider
	progress Progress
	log      *slog.Logger
}

// NewArtManager creates the cache directories and returns a manager.
// A nil progress waits silently.
func NewArtManager(cacheDir string, provider ArtProvider, progress Progress, logger *slog.Logger) (*ArtManager, error) {
	m := &ArtManager{
		asciiDir: filepath.Join(cacheDir, "ascii"),
		imageDir: filepath.Join(cacheDir, "images"),
		provider: provider,
		progress: progress,
		log:      logger,
	}
	if m.progress == nil {
		m.progress = silentProgress{}
	}

	for _, dir := range []string{cacheDir, m.asciiDir, m.imageDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}

	return m, nil
}

// cacheStem is sanitize(name_rarity) plus "default" or the prompt hash
func cacheStem(tmpl CharacterTemplate, userPrompt string) string {
	suffix := "default"
	if userPrompt != "" {
		suffix = strconv.FormatUint(xxhash.Sum64String(userPrompt), 10)
	}
	return sanitizeFileName(tmpl.Name+"_"+strconv.Itoa(tmpl.Rarity)) + "_" + suffix
}

// cachePaths returns the ASCII and image cache files for a request
func (m *ArtManager) cachePaths(tmpl CharacterTemplate, userPrompt string) (string, string) {
	stem := cacheStem(tmpl, userPrompt)
	return filepath.Join(m.asciiDir, stem+".txt"), filepath.Join(m.imageDir, stem+".png")
}

// AttachASCIIArt fills the character's art and cache paths.
// It always leaves non-empty art behind: cached text, text rebuilt from a
// cached image, freshly generated art, or the placeholder.
func (m *ArtManager) AttachASCIIArt(ctx context.Context, c *Character, tmpl CharacterTemplate, userPrompt string) {
	asciiPath, imagePath := m.cachePaths(tmpl, userPrompt)
	fallback := PlaceholderArt(tmpl.Name, tmpl.Rarity)
	logger := m.log.With("request", uuid.NewString(), "character", tmpl.Name)

	var art string
	state := stateASCIIHit
	for state != stateDone {
		switch state {
		case stateASCIIHit:
			state = stateImageRebuild
			cached, ok := readCachedASCII(asciiPath)
			if !ok {
				break
			}
			if cached == fallback {
				logger.InfoContext(ctx, "ignoring cached placeholder art", "path", asciiPath)
				break
			}
			logger.InfoContext(ctx, "cache hit", "path", asciiPath)
			art = cached
			m.recordHit(c, asciiPath, imagePath)
			state = stateDone

		case stateImageRebuild:
			state = stateMissGenerating
			rebuilt, ok := m.rebuildFromImage(ctx, logger, imagePath)
			if !ok {
				break
			}
			if err := writeFileAtomic(asciiPath, []byte(rebuilt)); err != nil {
				logger.WarnContext(ctx, "failed to write rebuilt ASCII cache", "path", asciiPath, "error", err)
			}
			logger.InfoContext(ctx, "rebuilt ASCII art from cached image", "path", imagePath)
			art = rebuilt
			m.recordHit(c, asciiPath, imagePath)
			state = stateDone

		case stateMissGenerating:
			logger.InfoContext(ctx, "cache miss, generating new art", "path", asciiPath, "provider", m.provider.Name())
			art = m.generate(ctx, logger, c, tmpl, userPrompt, fallback, asciiPath, imagePath)
			state = stateDone
		}
	}

	if art == "" {
		art = fallback
	}
	c.ASCIIArt = art
}

// generate runs the provider off the calling goroutine and commits the
// result to both caches only when real art came back
func (m *ArtManager) generate(ctx context.Context, logger *slog.Logger, c *Character, tmpl CharacterTemplate, userPrompt, fallback, asciiPath, imagePath string) string {
	req := GenerationRequest{
		Template:  tmpl,
		Prompt:    userPrompt,
		Fallback:  fallback,
		ImagePath: imagePath,
	}
	providerCtx := context.WithoutCancel(ctx)
	task := startArtTask(providerCtx, logger, func() Generation {
		return m.provider.Generate(providerCtx, req)
	})
	m.progress.Wait("Generating AI art", task.Done())
	gen := task.Wait()

	if gen.UsedPlaceholder || gen.ASCII == "" {
		logger.InfoContext(ctx, "placeholder art is not cached", "path", asciiPath)
		c.ArtCachePath = ""
		c.ArtImagePath = ""
		if err := os.Remove(imagePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.WarnContext(ctx, "failed to remove stale image cache", "path", imagePath, "error", err)
		}
		return gen.ASCII
	}

	if err := writeFileAtomic(asciiPath, []byte(gen.ASCII)); err != nil {
		logger.WarnContext(ctx, "failed to write ASCII cache", "path", asciiPath, "error", err)
	} else {
		logger.InfoContext(ctx, "saved new ASCII art to cache", "path", asciiPath)
	}
	m.recordHit(c, asciiPath, imagePath)
	return gen.ASCII
}

// rebuildFromImage rasterizes a surviving image cache file
func (m *ArtManager) rebuildFromImage(ctx context.Context, logger *slog.Logger, imagePath string) (string, bool) {
	info, err := os.Stat(imagePath)
	if err != nil || info.Size() == 0 {
		return "", false
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		logger.WarnContext(ctx, "failed to read cached image", "path", imagePath, "error", err)
		return "", false
	}

	art, err := imageToASCII(data)
	if err != nil {
		logger.WarnContext(ctx, "cached image could not be converted", "path", imagePath, "error", err)
		return "", false
	}
	return art, true
}

// recordHit points the character at its cache files; the image path is
// kept only when the file is actually there
func (m *ArtManager) recordHit(c *Character, asciiPath, imagePath string) {
	c.ArtCachePath = asciiPath
	c.ArtImagePath = ""
	if fileExists(imagePath) {
		c.ArtImagePath = imagePath
	}
}

// readCachedASCII reports false for missing, unreadable or empty files
func readCachedASCII(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// writeFileAtomic writes via a temp file and rename so readers never see a partial file
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// sanitizeFileName keeps ASCII letters and digits, turns space, '_' and
// '-' into '_', and drops everything else
func sanitizeFileName(input string) string {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch {
		case isAlnum(c):
			out = append(out, c)
		case c == ' ' || c == '_' || c == '-':
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "character"
	}
	return string(out)
}
