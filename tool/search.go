package tool

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/tools"
)

// ErrUnknownProvider is returned by NewSearchTool for an unsupported provider name.
var ErrUnknownProvider = errors.New("unknown search provider")

// Search providers.
const (
	ProviderTavily = "tavily"
	ProviderBrave  = "brave"
)

// Tavily search depths.
const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// SearchConfig selects and configures the web search backend.
type SearchConfig struct {
	Provider   string // "tavily" (default) or "brave"
	APIKey     string
	MaxResults int
	Depth      string // Tavily only
	BaseURL    string
	HTTPClient *http.Client
}

// NewSearchTool builds the web search tool the search step is bound to.
func NewSearchTool(cfg SearchConfig) (tools.Tool, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderTavily:
		opts := []TavilyOption{}
		if cfg.MaxResults > 0 {
			opts = append(opts, WithTavilyMaxResults(cfg.MaxResults))
		}
		if cfg.Depth != "" {
			opts = append(opts, WithTavilySearchDepth(cfg.Depth))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithTavilyBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, WithTavilyHTTPClient(cfg.HTTPClient))
		}
		t, err := NewTavilySearch(cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return t, nil
	case ProviderBrave:
		opts := []BraveOption{}
		if cfg.MaxResults > 0 {
			opts = append(opts, WithBraveCount(cfg.MaxResults))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, WithBraveBaseURL(cfg.BaseURL))
		}
		if cfg.HTTPClient != nil {
			opts = append(opts, WithBraveHTTPClient(cfg.HTTPClient))
		}
		b, err := NewBraveSearch(cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}

var (
	_ tools.Tool = (*TavilySearch)(nil)
	_ tools.Tool = (*BraveSearch)(nil)
)
