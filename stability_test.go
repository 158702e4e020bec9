package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestStabilityGenerate(t *testing.T) {
	image := checkerPNG(t)
	encoded := encodeBase64(image)

	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/generation/test-engine/text-to-image", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		gotBody, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"artifacts": [
			{"finishReason": "SUCCESS"},
			{"base64": "`+encoded+`", "finishReason": "CONTENT_FILTERED"},
			{"base64": "`+encoded+`", "finishReason": "SUCCESS"}
		]}`)
	}))
	defer server.Close()

	imagePath := filepath.Join(t.TempDir(), "images", "slime.png")
	p := &StabilityProvider{
		cfg:       AIServiceConfig{Host: server.URL, EngineID: "test-engine", APIKey: "sk-test"},
		transport: NewHTTPTransport(5 * time.Second),
		log:       testLogger(),
	}

	gen := p.Generate(context.Background(), GenerationRequest{
		Template:  slime,
		Prompt:    "wearing a crown",
		Fallback:  "fallback",
		ImagePath: imagePath,
	})

	require.False(t, gen.UsedPlaceholder)
	expected, err := imageToASCII(image)
	require.NoError(t, err)
	assert.Equal(t, expected, gen.ASCII)

	stored, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	assert.Equal(t, image, stored)

	body := gjson.ParseBytes(gotBody)
	assert.Equal(t, "A cheerful slime made of shimmering jelly, wearing a crown, hero portrait, dramatic lighting", body.Get("text_prompts.0.text").String())
	assert.Equal(t, 7.0, body.Get("cfg_scale").Float())
	assert.Equal(t, int64(30), body.Get("steps").Int())
	assert.Equal(t, int64(512), body.Get("width").Int())
	assert.Equal(t, int64(512), body.Get("height").Int())
}

func TestStabilityIncompleteConfig(t *testing.T) {
	transport := &stubTransport{}
	tests := []struct {
		name string
		cfg  AIServiceConfig
	}{
		{"missing key", AIServiceConfig{Host: "http://h", EngineID: "e"}},
		{"missing host", AIServiceConfig{APIKey: "k", EngineID: "e"}},
		{"missing engine", AIServiceConfig{Host: "http://h", APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &StabilityProvider{cfg: tt.cfg, transport: transport, log: testLogger()}
			gen := p.Generate(context.Background(), GenerationRequest{Template: slime, Fallback: "fallback"})
			assert.True(t, gen.UsedPlaceholder)
			assert.Equal(t, "fallback", gen.ASCII)
		})
	}
	assert.Zero(t, transport.Calls())
}

func TestStabilityNoUsableArtifact(t *testing.T) {
	transport := &stubTransport{response: &HTTPResponse{
		Status: http.StatusInternalServerError,
		Body:   []byte(`{"artifacts": [{"base64": "not-an-image-at-all", "finishReason": "SUCCESS"}]}`),
	}}
	imagePath := filepath.Join(t.TempDir(), "slime.png")
	p := &StabilityProvider{
		cfg:       AIServiceConfig{Host: "http://h", EngineID: "e", APIKey: "k"},
		transport: transport,
		log:       testLogger(),
	}

	gen := p.Generate(context.Background(), GenerationRequest{Template: slime, Fallback: "fallback", ImagePath: imagePath})

	assert.True(t, gen.UsedPlaceholder)
	assert.Equal(t, "http://h/v1/generation/e/text-to-image", transport.urls[0])
	assert.NoFileExists(t, imagePath)
}

func TestStabilityErrorStatusWithUsableArtifact(t *testing.T) {
	image := checkerPNG(t)
	transport := &stubTransport{response: &HTTPResponse{
		Status: http.StatusInternalServerError,
		Body:   []byte(`{"artifacts": [{"base64": "` + encodeBase64(image) + `", "finishReason": "SUCCESS"}]}`),
	}}
	imagePath := filepath.Join(t.TempDir(), "slime.png")
	p := &StabilityProvider{
		cfg:       AIServiceConfig{Host: "http://h", EngineID: "e", APIKey: "k"},
		transport: transport,
		log:       testLogger(),
	}

	gen := p.Generate(context.Background(), GenerationRequest{Template: slime, Fallback: "fallback", ImagePath: imagePath})

	assert.False(t, gen.UsedPlaceholder, "the body is inspected whatever the status")
	assert.NotEqual(t, "fallback", gen.ASCII)
	stored, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	assert.Equal(t, image, stored)
}
