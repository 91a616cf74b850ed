package notify

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// ErrUnknownTemplate is returned when no template with the requested name exists.
var ErrUnknownTemplate = errors.New("notify: unknown template")

// Renderer executes named pongo2 templates. Templates are compiled once
// and cached, so Renderer is safe for concurrent use.
type Renderer struct {
	globals   pongo2.Context
	templates map[string]*pongo2.Template
	set       *pongo2.TemplateSet
}

// RendererOption customizes a Renderer.
type RendererOption func(*Renderer) error

// WithGlobals adds values visible to every template, such as base_url.
// Per-message data wins on key collisions.
func WithGlobals(globals map[string]any) RendererOption {
	return func(r *Renderer) error {
		for k, v := range globals {
			r.globals[k] = v
		}
		return nil
	}
}

// WithTemplateDir resolves templates from dir before the embedded set.
func WithTemplateDir(dir string) RendererOption {
	return func(r *Renderer) error {
		loader, err := pongo2.NewLocalFileSystemLoader(dir)
		if err != nil {
			return fmt.Errorf("notify: template dir: %w", err)
		}
		r.set = pongo2.NewSet("mail", loader)
		return nil
	}
}

// NewRenderer compiles the embedded templates and applies opts.
func NewRenderer(opts ...RendererOption) (*Renderer, error) {
	r := &Renderer{
		globals:   pongo2.Context{},
		templates: make(map[string]*pongo2.Template),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	entries, err := fs.ReadDir(defaultTemplates, "templates")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		raw, err := defaultTemplates.ReadFile(path.Join("templates", entry.Name()))
		if err != nil {
			return nil, err
		}
		tpl, err := pongo2.FromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("notify: compile %s: %w", entry.Name(), err)
		}
		r.templates[entry.Name()] = tpl
	}

	return r, nil
}

// Render executes template name with data merged over the globals.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	tpl, err := r.lookup(name)
	if err != nil {
		return "", err
	}

	ctx := make(pongo2.Context, len(r.globals)+len(data))
	ctx.Update(r.globals)
	ctx.Update(pongo2.Context(data))

	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("notify: render %s: %w", name, err)
	}
	return out, nil
}

func (r *Renderer) lookup(name string) (*pongo2.Template, error) {
	tpl, ok := r.templates[name]
	if r.set != nil {
		if override, err := r.set.FromCache(name); err == nil {
			return override, nil
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	return tpl, nil
}
