package config

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/document"
)

// GlobalFile is the logical path of the site-wide template context.
const GlobalFile = "global.yaml"

// Global is the site-wide template context plus the locale derived from it.
type Global struct {
	// Context is bound as "global" in every template render.
	Context map[string]any
	Locale  document.Locale
}

// LoadGlobal reads global.yaml through the provider. A missing file is not an
// error: the context is empty and the locale falls back to the default.
func LoadGlobal(p content.Provider) (Global, error) {
	text, err := p.Read(GlobalFile)
	if errors.Is(err, fs.ErrNotExist) {
		return Global{Context: map[string]any{}, Locale: document.DefaultLocale()}, nil
	}
	if err != nil {
		return Global{}, fmt.Errorf("read %s: %w", GlobalFile, err)
	}
	ctx := map[string]any{}
	if err := yaml.Unmarshal([]byte(text), &ctx); err != nil {
		return Global{}, fmt.Errorf("parse %s: %w", GlobalFile, err)
	}
	locale := document.DefaultLocale()
	if v, ok := ctx["locale"].(string); ok {
		locale = document.ParseLocale(v)
	}
	return Global{Context: ctx, Locale: locale}, nil
}
