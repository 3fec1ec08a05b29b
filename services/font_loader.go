package services

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"bygg_flow_app_go/config"
)

// The layout engine embeds a variable-width TTF so Swedish text renders with
// correct metrics. Loading is expensive and the bytes are immutable, so the
// result is cached process-wide after the first success.
var fontCache struct {
	mu    sync.Mutex
	bytes []byte
}

// LoadFontBytes returns the bundled PDF font. An HTTP source is tried first
// when configured (a non-OK response is a fatal configuration error), then
// the bundled file path.
func LoadFontBytes(cfg *config.Config) ([]byte, error) {
	fontCache.mu.Lock()
	defer fontCache.mu.Unlock()

	if fontCache.bytes != nil {
		return fontCache.bytes, nil
	}

	if cfg.FontURL != "" {
		data, err := fetchFont(cfg.FontURL)
		if err != nil {
			return nil, err
		}
		fontCache.bytes = data
		return data, nil
	}

	data, err := os.ReadFile(cfg.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font asset %s: %w", cfg.FontPath, err)
	}
	fontCache.bytes = data
	return data, nil
}

// ResetFontCache clears the cached font bytes. Test hook only.
func ResetFontCache() {
	fontCache.mu.Lock()
	defer fontCache.mu.Unlock()
	fontCache.bytes = nil
}

func fetchFont(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch font from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("font fetch from %s returned status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read font response: %w", err)
	}
	return data, nil
}
