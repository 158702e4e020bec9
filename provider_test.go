package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// testLogger discards everything
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTransport answers every Post with a canned response and records calls
type stubTransport struct {
	mu       sync.Mutex
	calls    int
	urls     []string
	bodies   [][]byte
	headers  [][]Header
	response *HTTPResponse
	err      error
}

func (s *stubTransport) Post(_ context.Context, url string, body []byte, headers []Header) (*HTTPResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.urls = append(s.urls, url)
	s.bodies = append(s.bodies, body)
	s.headers = append(s.headers, headers)
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubTransport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func headerValue(headers []Header, name string) string {
	for _, h := range headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

var slime = CharacterTemplate{
	Name:    "Glimmer Slime",
	Rarity:  1,
	BaseHP:  120,
	BaseATK: 18,
	Skill:   "Sticky Tackle",
	Prompt:  "A cheerful slime made of shimmering jelly",
}

func TestComposePrompt(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     CharacterTemplate
		prompt   string
		expected string
	}{
		{"all segments", slime, "wearing a crown", "A cheerful slime made of shimmering jelly, wearing a crown, hero portrait, dramatic lighting"},
		{"empty user prompt", slime, "", "A cheerful slime made of shimmering jelly, hero portrait, dramatic lighting"},
		{"segments kept verbatim", CharacterTemplate{Prompt: " padded "}, "neon ", " padded , neon , hero portrait, dramatic lighting"},
		{"no template prompt", CharacterTemplate{Name: "X"}, "neon", "neon, hero portrait, dramatic lighting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, composePrompt(tt.tmpl, tt.prompt))
		})
	}
}

func TestEnsureTrailingSlash(t *testing.T) {
	assert.Equal(t, "http://h/", ensureTrailingSlash("http://h"))
	assert.Equal(t, "http://h/", ensureTrailingSlash("http://h/"))
	assert.Equal(t, "", ensureTrailingSlash(""))
}

func TestNewArtProvider(t *testing.T) {
	transport := &stubTransport{}

	assert.IsType(t, &StabilityProvider{}, NewArtProvider(AIServiceConfig{Provider: ProviderStability}, transport, testLogger()))
	assert.IsType(t, &Automatic1111Provider{}, NewArtProvider(AIServiceConfig{Provider: ProviderAutomatic1111}, transport, testLogger()))
	assert.IsType(t, disabledProvider{}, NewArtProvider(AIServiceConfig{}, transport, testLogger()))
}

func TestDisabledProviderUsesFallback(t *testing.T) {
	req := GenerationRequest{Template: slime, Fallback: "fallback art"}
	gen := disabledProvider{}.Generate(context.Background(), req)

	assert.True(t, gen.UsedPlaceholder)
	assert.Equal(t, "fallback art", gen.ASCII)
}

func TestProvidersFallBackOnTransportError(t *testing.T) {
	transport := &stubTransport{err: errors.New("connection refused")}
	req := GenerationRequest{Template: slime, Fallback: "fallback art"}

	providers := []ArtProvider{
		&StabilityProvider{cfg: AIServiceConfig{Host: "http://h", EngineID: "e", APIKey: "k"}, transport: transport, log: testLogger()},
		&Automatic1111Provider{cfg: AIServiceConfig{Host: "http://h"}, transport: transport, log: testLogger()},
	}
	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			gen := p.Generate(context.Background(), req)
			assert.True(t, gen.UsedPlaceholder)
			assert.Equal(t, "fallback art", gen.ASCII)
		})
	}
	assert.Equal(t, 2, transport.Calls())
}

func TestProvidersFallBackOnMalformedJSON(t *testing.T) {
	transport := &stubTransport{response: &HTTPResponse{Status: 200, Body: []byte("<html>oops</html>")}}
	req := GenerationRequest{Template: slime, Fallback: "fallback art"}

	providers := []ArtProvider{
		&StabilityProvider{cfg: AIServiceConfig{Host: "http://h", EngineID: "e", APIKey: "k"}, transport: transport, log: testLogger()},
		&Automatic1111Provider{cfg: AIServiceConfig{Host: "http://h"}, transport: transport, log: testLogger()},
	}
	for _, p := range providers {
		t.Run(p.Name(), func(t *testing.T) {
			gen := p.Generate(context.Background(), req)
			assert.True(t, gen.UsedPlaceholder)
			assert.Equal(t, "fallback art", gen.ASCII)
		})
	}
}
