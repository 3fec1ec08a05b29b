package services

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"bygg_flow_app_go/config"

	"github.com/stretchr/testify/assert"
)

func TestLoadFontBytesFromFile(t *testing.T) {
	ResetFontCache()
	defer ResetFontCache()

	dir := t.TempDir()
	path := filepath.Join(dir, "font.ttf")
	assert.NoError(t, os.WriteFile(path, []byte("fake-ttf-bytes"), 0644))

	data, err := LoadFontBytes(&config.Config{FontPath: path})
	assert.NoError(t, err)
	assert.Equal(t, []byte("fake-ttf-bytes"), data)
}

func TestLoadFontBytesFromURL(t *testing.T) {
	ResetFontCache()
	defer ResetFontCache()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote-ttf-bytes"))
	}))
	defer server.Close()

	data, err := LoadFontBytes(&config.Config{FontURL: server.URL})
	assert.NoError(t, err)
	assert.Equal(t, []byte("remote-ttf-bytes"), data)
}

func TestLoadFontBytesURLErrorStatusIsFatal(t *testing.T) {
	ResetFontCache()
	defer ResetFontCache()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := LoadFontBytes(&config.Config{FontURL: server.URL})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadFontBytesCachesResult(t *testing.T) {
	ResetFontCache()
	defer ResetFontCache()

	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("remote-ttf-bytes"))
	}))
	defer server.Close()

	cfg := &config.Config{FontURL: server.URL}
	_, err := LoadFontBytes(cfg)
	assert.NoError(t, err)
	_, err = LoadFontBytes(cfg)
	assert.NoError(t, err)
	assert.Equal(t, 1, hits, "the font is fetched once and cached process-wide")
}

func TestLoadFontBytesMissingFile(t *testing.T) {
	ResetFontCache()
	defer ResetFontCache()

	_, err := LoadFontBytes(&config.Config{FontPath: "no/such/font.ttf"})
	assert.Error(t, err)
}
