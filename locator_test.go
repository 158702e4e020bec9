package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

var (
	innerPayload = strings.Repeat("iVBORw0KGgoAAAAN", 4) + "=="
	otherPayload = strings.Repeat("QUJDREVGR0hJSktM", 4)
)

func TestFindBase64Image(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		want   string
		wantOK bool
	}{
		{
			name:   "preferred key beats distractor",
			json:   `{"extra": "` + otherPayload + `", "data": {"junk": "` + otherPayload + `", "image": "` + innerPayload + `"}}`,
			want:   innerPayload,
			wantOK: true,
		},
		{
			name:   "bare string",
			json:   `"` + innerPayload + `"`,
			want:   innerPayload,
			wantOK: true,
		},
		{
			name:   "data uri prefix stripped",
			json:   `{"image": "data:image/png;base64,` + innerPayload + `"}`,
			want:   innerPayload,
			wantOK: true,
		},
		{
			name:   "array in order",
			json:   `["short", "` + otherPayload + `", "` + innerPayload + `"]`,
			want:   otherPayload,
			wantOK: true,
		},
		{
			name:   "fallback uses document order",
			json:   `{"zeta": "` + innerPayload + `", "alpha": "` + otherPayload + `"}`,
			want:   innerPayload,
			wantOK: true,
		},
		{
			name:   "too short",
			json:   `{"image": "abc"}`,
			wantOK: false,
		},
		{
			name:   "punctuation rejected",
			json:   `{"image": "this is not base64 at all!"}`,
			wantOK: false,
		},
		{
			name:   "numbers and nulls ignored",
			json:   `{"image": null, "data": 42, "ok": true}`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findBase64Image(gjson.Parse(tt.json))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindImagePath(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		want   string
		wantOK bool
	}{
		{"images array", `{"images": ["/tmp/out/0001.png"]}`, "/tmp/out/0001.png", true},
		{"unknown extension", `{"name": "config.json"}`, "", false},
		{"extension case insensitive", `{"file": "PORTRAIT.JPEG"}`, "PORTRAIT.JPEG", true},
		{"windows separator", `{"output": "C:\\renders\\hero"}`, `C:\renders\hero`, true},
		{"preferred key first", `{"info": "a/b.txt", "path": "out/hero.webp"}`, "out/hero.webp", true},
		{"nested fallback", `{"result": {"files": [{"x": "renders/1.gif"}]}}`, "renders/1.gif", true},
		{"empty string", `{"path": ""}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findImagePath(gjson.Parse(tt.json))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchDepthIsBounded(t *testing.T) {
	deep := strings.Repeat("[", 100) + `"renders/deep.png"` + strings.Repeat("]", 100)
	_, ok := findImagePath(gjson.Parse(deep))
	assert.False(t, ok)

	shallow := strings.Repeat("[", 10) + `"renders/deep.png"` + strings.Repeat("]", 10)
	got, ok := findImagePath(gjson.Parse(shallow))
	assert.True(t, ok)
	assert.Equal(t, "renders/deep.png", got)
}

// nestUnder wraps leaf in depth objects, cycling through keys
func nestUnder(keys []string, depth int, leaf string) string {
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString(`{"` + keys[i%len(keys)] + `": `)
	}
	b.WriteString(leaf)
	b.WriteString(strings.Repeat("}", depth))
	return b.String()
}

func TestSearchPreferredKeyChainIsLinear(t *testing.T) {
	tests := []struct {
		name   string
		json   string
		find   func(gjson.Result) (string, bool)
		want   string
		wantOK bool
	}{
		{"image chain without payload", nestUnder([]string{"image"}, 60, `"x"`), findBase64Image, "", false},
		{"mixed chain without payload", nestUnder([]string{"data", "image", "bytes"}, 60, `"x"`), findBase64Image, "", false},
		{"image chain with payload", nestUnder([]string{"image"}, 40, `"`+innerPayload+`"`), findBase64Image, innerPayload, true},
		{"path chain without match", nestUnder([]string{"path", "output"}, 60, `"x"`), findImagePath, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			type result struct {
				got string
				ok  bool
			}
			done := make(chan result, 1)
			go func() {
				got, ok := tt.find(gjson.Parse(tt.json))
				done <- result{got, ok}
			}()

			select {
			case r := <-done:
				assert.Equal(t, tt.wantOK, r.ok)
				assert.Equal(t, tt.want, r.got)
			case <-time.After(2 * time.Second):
				t.Fatal("search did not finish")
			}
		})
	}
}

func TestLooksLikeBase64(t *testing.T) {
	assert.True(t, looksLikeBase64("AAAA BBBB\nCCCC\tDDDD"))
	assert.True(t, looksLikeBase64("abcd-efgh_ijkl+mnop/="))
	assert.False(t, looksLikeBase64("AAAA BBBB CCCC D"))
	assert.False(t, looksLikeBase64("AAAAAAAAAAAAAAAA!"))
}
