package llmstxt

import "net/http"

// Meta is the documentation attached to a route handler.
type Meta struct {
	Summary     string
	Description string
	Params      []Param
}

// Documented is implemented by handlers that carry their own documentation.
type Documented interface {
	http.Handler
	LLMsMeta() Meta
}

type describedHandler struct {
	http.Handler
	meta Meta
}

func (d *describedHandler) LLMsMeta() Meta { return d.meta }

func (d *describedHandler) Unwrap() http.Handler { return d.Handler }

// Describe attaches documentation to h. The returned handler serves requests
// exactly like h.
//
//	r.Method(http.MethodGet, "/books/{bookID}", llmstxt.Describe(getBook, llmstxt.Meta{
//		Summary: "Get a book by ID",
//		Params:  []llmstxt.Param{llmstxt.PathParam("bookID", "string", "The ID of the book")},
//	}))
func Describe(h http.Handler, meta Meta) http.Handler {
	return &describedHandler{Handler: h, meta: meta}
}

// DescribeFunc is Describe for plain handler functions.
func DescribeFunc(fn func(http.ResponseWriter, *http.Request), meta Meta) http.Handler {
	return Describe(http.HandlerFunc(fn), meta)
}

type hiddenHandler struct {
	http.Handler
}

func (h hiddenHandler) Unwrap() http.Handler { return h.Handler }

// Hidden marks h so that it is left out of the generated document.
func Hidden(h http.Handler) http.Handler {
	return hiddenHandler{Handler: h}
}

type unwrapper interface {
	Unwrap() http.Handler
}

// metaOf walks the Unwrap chain of h and returns the first attached Meta.
func metaOf(h http.Handler) (Meta, bool) {
	for h != nil {
		if d, ok := h.(Documented); ok {
			return d.LLMsMeta(), true
		}
		u, ok := h.(unwrapper)
		if !ok {
			return Meta{}, false
		}
		h = u.Unwrap()
	}
	return Meta{}, false
}

func isHidden(h http.Handler) bool {
	for h != nil {
		switch v := h.(type) {
		case hiddenHandler, *Handler:
			return true
		case unwrapper:
			h = v.Unwrap()
		default:
			return false
		}
	}
	return false
}

// innermost returns the handler at the end of the Unwrap chain.
func innermost(h http.Handler) http.Handler {
	for {
		u, ok := h.(unwrapper)
		if !ok {
			return h
		}
		next := u.Unwrap()
		if next == nil {
			return h
		}
		h = next
	}
}
