package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestManager builds a manager over a fresh cache directory with an
// Automatic1111 provider talking to transport
func newTestManager(t *testing.T, transport Transport) (*ArtManager, string) {
	t.Helper()
	dir := t.TempDir()
	provider := NewArtProvider(AIServiceConfig{Provider: ProviderAutomatic1111, Host: "http://stub"}, transport, testLogger())
	m, err := NewArtManager(dir, provider, silentProgress{}, testLogger())
	require.NoError(t, err)
	return m, dir
}

func imagesResponse(t *testing.T) *HTTPResponse {
	return &HTTPResponse{
		Status: 200,
		Body:   []byte(`{"images":["` + encodeBase64(checkerPNG(t)) + `"]}`),
	}
}

func TestNewArtManagerCreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	_, err := NewArtManager(dir, disabledProvider{}, nil, testLogger())
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(dir, "ascii"))
	assert.DirExists(t, filepath.Join(dir, "images"))
}

func TestCachePaths(t *testing.T) {
	m, dir := newTestManager(t, &stubTransport{})

	asciiPath, imagePath := m.cachePaths(slime, "")
	assert.Equal(t, filepath.Join(dir, "ascii", "Glimmer_Slime_1_default.txt"), asciiPath)
	assert.Equal(t, filepath.Join(dir, "images", "Glimmer_Slime_1_default.png"), imagePath)

	withPrompt, _ := m.cachePaths(slime, "wearing a crown")
	again, _ := m.cachePaths(slime, "wearing a crown")
	other, _ := m.cachePaths(slime, "wearing a hat")
	assert.Equal(t, withPrompt, again)
	assert.NotEqual(t, withPrompt, other)
	assert.NotContains(t, filepath.Base(withPrompt), "default")
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Glimmer Slime_1", "Glimmer_Slime_1"},
		{"Arc-Forge_3", "Arc_Forge_3"},
		{"Ñoño/../etc_2", "ooetc_2"},
		{"!!!", "character"},
		{"", "character"},
	}

	for _, tt := range tests {
		if got := sanitizeFileName(tt.input); got != tt.expected {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestAttachASCIIArtCacheRoundTrip(t *testing.T) {
	transport := &stubTransport{response: imagesResponse(t)}
	m, _ := newTestManager(t, transport)
	ctx := context.Background()

	first := NewCharacter(1, slime)
	m.AttachASCIIArt(ctx, &first, slime, "")
	require.Equal(t, 1, transport.Calls())
	assert.NotEqual(t, PlaceholderArt(slime.Name, slime.Rarity), first.ASCIIArt)
	assert.FileExists(t, first.ArtCachePath)
	assert.FileExists(t, first.ArtImagePath)

	second := NewCharacter(2, slime)
	m.AttachASCIIArt(ctx, &second, slime, "")
	assert.Equal(t, 1, transport.Calls(), "second request must be served from the ASCII cache")
	assert.Equal(t, first.ASCIIArt, second.ASCIIArt)
	assert.Equal(t, first.ArtCachePath, second.ArtCachePath)
	assert.Equal(t, first.ArtImagePath, second.ArtImagePath)
}

func TestAttachASCIIArtRebuildsFromImage(t *testing.T) {
	transport := &stubTransport{response: imagesResponse(t)}
	m, _ := newTestManager(t, transport)
	ctx := context.Background()

	first := NewCharacter(1, slime)
	m.AttachASCIIArt(ctx, &first, slime, "neon")
	require.Equal(t, 1, transport.Calls())
	require.NoError(t, os.Remove(first.ArtCachePath))

	second := NewCharacter(2, slime)
	m.AttachASCIIArt(ctx, &second, slime, "neon")

	assert.Equal(t, 1, transport.Calls(), "rebuild must not call the provider")
	assert.Equal(t, first.ASCIIArt, second.ASCIIArt)
	cached, err := os.ReadFile(first.ArtCachePath)
	require.NoError(t, err)
	assert.Equal(t, first.ASCIIArt, string(cached), "rebuilt art is written back")
}

func TestAttachASCIIArtIgnoresCachedPlaceholder(t *testing.T) {
	transport := &stubTransport{response: imagesResponse(t)}
	m, _ := newTestManager(t, transport)
	asciiPath, _ := m.cachePaths(slime, "")
	require.NoError(t, os.WriteFile(asciiPath, []byte(PlaceholderArt(slime.Name, slime.Rarity)), 0o644))

	c := NewCharacter(1, slime)
	m.AttachASCIIArt(context.Background(), &c, slime, "")

	assert.Equal(t, 1, transport.Calls())
	assert.NotEqual(t, PlaceholderArt(slime.Name, slime.Rarity), c.ASCIIArt)
}

func TestAttachASCIIArtEmptyCacheFileIsMiss(t *testing.T) {
	transport := &stubTransport{response: imagesResponse(t)}
	m, _ := newTestManager(t, transport)
	asciiPath, _ := m.cachePaths(slime, "")
	require.NoError(t, os.WriteFile(asciiPath, nil, 0o644))

	c := NewCharacter(1, slime)
	m.AttachASCIIArt(context.Background(), &c, slime, "")

	assert.Equal(t, 1, transport.Calls())
	assert.NotEmpty(t, c.ASCIIArt)
}

func TestAttachASCIIArtUnreachableProvider(t *testing.T) {
	transport := &stubTransport{err: errors.New("dial tcp 127.0.0.1:7860: connect: connection refused")}
	m, _ := newTestManager(t, transport)

	c := NewCharacter(1, slime)
	m.AttachASCIIArt(context.Background(), &c, slime, "")

	assert.Equal(t, PlaceholderArt("Glimmer Slime", 1), c.ASCIIArt)
	assert.Empty(t, c.ArtCachePath)
	assert.Empty(t, c.ArtImagePath)

	asciiPath, imagePath := m.cachePaths(slime, "")
	assert.NoFileExists(t, asciiPath)
	assert.NoFileExists(t, imagePath)
}

func TestAttachASCIIArtDisabledProvider(t *testing.T) {
	m, err := NewArtManager(t.TempDir(), disabledProvider{}, silentProgress{}, testLogger())
	require.NoError(t, err)

	c := NewCharacter(1, slime)
	m.AttachASCIIArt(context.Background(), &c, slime, "")
	assert.Equal(t, PlaceholderArt("Glimmer Slime", 1), c.ASCIIArt)
}

func TestAttachASCIIArtRemovesStaleImage(t *testing.T) {
	m, err := NewArtManager(t.TempDir(), disabledProvider{}, silentProgress{}, testLogger())
	require.NoError(t, err)

	// An unreadable image cache falls through to generation, which fails
	_, imagePath := m.cachePaths(slime, "")
	require.NoError(t, os.WriteFile(imagePath, []byte("corrupt"), 0o644))

	c := NewCharacter(1, slime)
	m.AttachASCIIArt(context.Background(), &c, slime, "")

	assert.Equal(t, PlaceholderArt("Glimmer Slime", 1), c.ASCIIArt)
	assert.NoFileExists(t, imagePath)
}

// emptyProvider claims success but returns no text
type emptyProvider struct{}

func (emptyProvider) Name() string { return "empty" }

func (emptyProvider) Generate(context.Context, GenerationRequest) Generation {
	return Generation{}
}

func TestAttachASCIIArtNeverEmpty(t *testing.T) {
	m, err := NewArtManager(t.TempDir(), emptyProvider{}, silentProgress{}, testLogger())
	require.NoError(t, err)

	c := NewCharacter(1, slime)
	m.AttachASCIIArt(context.Background(), &c, slime, "")
	assert.Equal(t, PlaceholderArt("Glimmer Slime", 1), c.ASCIIArt)
}

// panicProvider simulates a crashing backend
type panicProvider struct{}

func (panicProvider) Name() string { return "panic" }

func (panicProvider) Generate(context.Context, GenerationRequest) Generation {
	panic("backend exploded")
}

func TestAttachASCIIArtRecoversFromPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai_art.log")
	m, err := NewArtManager(t.TempDir(), panicProvider{}, silentProgress{}, newLogger(NewLogSink(path), nil))
	require.NoError(t, err)

	c := NewCharacter(1, slime)
	m.AttachASCIIArt(context.Background(), &c, slime, "")
	assert.True(t, strings.HasPrefix(c.ASCIIArt, "Glimmer Slime (★)\n"))

	log, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(log), "ERROR art generation panicked, using placeholder")
	assert.Contains(t, string(log), "panic=backend exploded")
	assert.Contains(t, string(log), "character=Glimmer Slime")
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "art.txt")
	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
	assert.NoFileExists(t, path+".tmp")

	err = writeFileAtomic(filepath.Join(t.TempDir(), "missing", "art.txt"), []byte("x"))
	assert.Error(t, err)
}
