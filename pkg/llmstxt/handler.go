package llmstxt

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
)

const (
	// DefaultPath is the route the document is served on.
	DefaultPath = "/llms.txt"

	// ContentType is the Content-Type of the served document.
	ContentType = "text/plain; charset=utf-8"

	// Tag groups the llms.txt route in API listings.
	Tag = "LLMs.txt"

	handlerSummary     = "Get llms.txt contents"
	handlerDescription = "Returns a plain text llms.txt file that adheres to the llms.txt specification. " +
		"This endpoint provides information about the API that is helpful for Large Language Models " +
		"to understand the purpose and capabilities of this API."
)

// ErrNilRouter is returned by Register when no router is given.
var ErrNilRouter = errors.New("llmstxt: router is nil")

// Handler serves the llms.txt document. It walks the router and renders the
// document on every request, so routes added after registration appear.
type Handler struct {
	project   ProjectDescription
	projectFn func() ProjectDescription
	routes    chi.Routes
	cfg       *Config
	extractor *Extractor
	logger    *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithNotes sets the bulleted notes rendered under the summary.
func WithNotes(notes ...string) Option {
	return func(h *Handler) {
		h.project.Notes = append([]string(nil), notes...)
	}
}

// WithSections sets the link sections, rendered in the given order.
func WithSections(sections ...Section) Option {
	return func(h *Handler) {
		h.project.Sections = append([]Section(nil), sections...)
	}
}

// WithSectionMap sets the link sections from a mapping, ordered by name.
func WithSectionMap(sections map[string][]LinkItem) Option {
	return func(h *Handler) {
		h.project.Sections = SectionsFromMap(sections)
	}
}

// WithoutAPIDocs leaves the "## API Endpoints" block out of the document.
func WithoutAPIDocs() Option {
	return func(h *Handler) {
		h.cfg.IncludeAPIDocs = false
	}
}

// WithPath serves the document on path instead of DefaultPath.
func WithPath(path string) Option {
	return func(h *Handler) {
		h.cfg.Path = path
	}
}

// WithExclude leaves routes under the given prefixes out of the API block.
func WithExclude(prefixes ...string) Option {
	return func(h *Handler) {
		h.cfg.Exclude = append(h.cfg.Exclude, prefixes...)
	}
}

// WithConfig replaces the handler configuration. Options after it still apply.
func WithConfig(cfg *Config) Option {
	return func(h *Handler) {
		if cfg == nil {
			return
		}
		c := *cfg
		c.Exclude = append([]string(nil), cfg.Exclude...)
		h.cfg = &c
	}
}

// WithRoutes documents routes instead of the router the handler is
// registered on. Use it when the document is served from a sub-router.
func WithRoutes(routes chi.Routes) Option {
	return func(h *Handler) {
		h.routes = routes
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithProjectFunc supplies the project description on every request. It
// takes precedence over the title, summary, notes and sections given at
// construction, which allows the description to be reloaded at runtime.
func WithProjectFunc(fn func() ProjectDescription) Option {
	return func(h *Handler) {
		h.projectFn = fn
	}
}

// New creates a Handler. Links without a title or an absolute http(s) URL
// are dropped and logged.
func New(title, summary string, opts ...Option) *Handler {
	h := &Handler{
		project: ProjectDescription{Title: title, Summary: summary},
		cfg:     DefaultConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.cfg.Path == "" {
		h.cfg.Path = DefaultPath
	}
	h.project.Sections = CleanSections(h.project.Sections, h.logger)
	h.extractor = NewExtractor([]string{h.cfg.Path}, h.cfg.Exclude)
	return h
}

// Register mounts GET /llms.txt (or the configured path) on r and returns
// the handler serving it.
//
//	llmstxt.Register(r, "Bookstore API", "An API for managing a bookstore catalog.",
//		llmstxt.WithNotes("All prices are in USD."),
//		llmstxt.WithSections(llmstxt.Section{Name: "Documentation", Links: links}),
//	)
func Register(r chi.Router, title, summary string, opts ...Option) (*Handler, error) {
	if isNilRouter(r) {
		return nil, ErrNilRouter
	}
	h := New(title, summary, opts...)
	if h.routes == nil {
		h.routes = r
	}
	r.Method(http.MethodGet, h.cfg.Path, h)
	h.logger.Info("registered llms.txt endpoint",
		"path", h.cfg.Path,
		"includeAPIDocs", h.cfg.IncludeAPIDocs)
	return h, nil
}

func isNilRouter(r chi.Router) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Path returns the route the document is served on.
func (h *Handler) Path() string { return h.cfg.Path }

// Project returns the project description used for the next render.
// Invalid links from a project func are dropped and logged as well.
func (h *Handler) Project() ProjectDescription {
	if h.projectFn != nil {
		p := h.projectFn()
		p.Sections = CleanSections(p.Sections, h.logger)
		return p
	}
	return h.project.Clone()
}

// Endpoints returns the endpoints currently listed in the document.
func (h *Handler) Endpoints() []Endpoint {
	if !h.cfg.IncludeAPIDocs || h.routes == nil {
		return nil
	}
	return h.extractor.Extract(h.routes)
}

// Render returns the document as it would be served now.
func (h *Handler) Render() string {
	return Render(h.Project(), h.Endpoints())
}

// LLMsMeta documents the llms.txt route itself.
func (h *Handler) LLMsMeta() Meta {
	return Meta{Summary: handlerSummary, Description: handlerDescription}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	content := h.Render()

	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, content); err != nil {
		h.logger.Debug("failed to write llms.txt response", "error", err)
	}
}
