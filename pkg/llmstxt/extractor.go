package llmstxt

import (
	"net/http"
	"reflect"
	"runtime"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stoewer/go-strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// DefaultMethod is rendered for endpoints without any method.
	DefaultMethod = http.MethodGet

	// AnyMethod replaces the method list of routes that accept every
	// standard method, such as those added with Handle or Mount.
	AnyMethod = "ANY"
)

// standardMethods is the canonical rendering order of HTTP methods.
var standardMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodConnect,
	http.MethodOptions,
	http.MethodTrace,
}

var allStandardMethods = mapset.NewThreadUnsafeSet(standardMethods...)

var digitPatterns = mapset.NewThreadUnsafeSet(`[0-9]+`, `\d+`, `[0-9]*`, `\d*`)

// Endpoint is the documentation extracted for one route handler.
type Endpoint struct {
	Methods     []string `json:"methods" yaml:"methods"`
	Path        string   `json:"path" yaml:"path"`
	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []Param  `json:"params,omitempty" yaml:"params,omitempty"`
}

// Method returns the rendered method label, e.g. "GET, HEAD".
func (e Endpoint) Method() string {
	if len(e.Methods) == 0 {
		return DefaultMethod
	}
	return strings.Join(e.Methods, ", ")
}

// Extractor walks a chi route tree and builds endpoint descriptors.
type Extractor struct {
	skipPaths       mapset.Set[string]
	excludePrefixes []string
}

// NewExtractor creates an Extractor that ignores routes whose pattern is in
// skipPaths or falls under one of excludePrefixes.
func NewExtractor(skipPaths, excludePrefixes []string) *Extractor {
	prefixes := make([]string, 0, len(excludePrefixes))
	for _, p := range excludePrefixes {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Extractor{
		skipPaths:       mapset.NewThreadUnsafeSet(skipPaths...),
		excludePrefixes: prefixes,
	}
}

// Extract walks routes with the default extractor.
func Extract(routes chi.Routes) []Endpoint {
	return NewExtractor(nil, nil).Extract(routes)
}

type routeGroup struct {
	path    string
	handler http.Handler
	methods mapset.Set[string]
}

type groupKey struct {
	path    string
	handler any
}

// Extract returns one endpoint per (path, handler) pair, ordered by path.
// Methods served by the same handler on the same path are merged.
// Routes that cannot be documented are skipped.
func (e *Extractor) Extract(routes chi.Routes) []Endpoint {
	if routes == nil {
		return nil
	}

	var groups []*routeGroup
	index := make(map[groupKey]*routeGroup)

	_ = chi.Walk(routes, func(method, route string, handler http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !e.include(route, handler) {
			return nil
		}
		key := groupKey{path: route, handler: handlerKey(handler)}
		if key.handler == nil {
			// Unkeyable handlers never merge.
			key.handler = len(groups)
		}
		if g, ok := index[key]; ok {
			g.methods.Add(method)
			return nil
		}
		g := &routeGroup{path: route, handler: handler, methods: mapset.NewThreadUnsafeSet(method)}
		index[key] = g
		groups = append(groups, g)
		return nil
	})

	endpoints := make([]Endpoint, 0, len(groups))
	for _, g := range groups {
		endpoints = append(endpoints, buildEndpoint(g.path, methodList(g.methods), g.handler))
	}
	sort.SliceStable(endpoints, func(i, j int) bool {
		if endpoints[i].Path != endpoints[j].Path {
			return endpoints[i].Path < endpoints[j].Path
		}
		return methodRank(endpoints[i].Methods[0]) < methodRank(endpoints[j].Methods[0])
	})
	return endpoints
}

func (e *Extractor) include(route string, handler http.Handler) bool {
	if route == "" || handler == nil {
		return false
	}
	if e.skipPaths.Contains(route) {
		return false
	}
	if isHidden(handler) {
		return false
	}
	for _, prefix := range e.excludePrefixes {
		if route == prefix || strings.HasPrefix(route, strings.TrimSuffix(prefix, "/")+"/") {
			return false
		}
	}
	return true
}

// handlerKey returns a comparable identity for h, or nil when h has none.
// Handlers are usually funcs, which cannot be compared with ==.
func handlerKey(h http.Handler) any {
	type handlerID struct {
		typ reflect.Type
		ptr uintptr
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return handlerID{typ: v.Type(), ptr: v.Pointer()}
	}
	return nil
}

func methodList(methods mapset.Set[string]) []string {
	if methods.IsSuperset(allStandardMethods) {
		return []string{AnyMethod}
	}
	out := methods.ToSlice()
	sort.Slice(out, func(i, j int) bool {
		ri, rj := methodRank(out[i]), methodRank(out[j])
		if ri != rj {
			return ri < rj
		}
		return out[i] < out[j]
	})
	return out
}

func methodRank(method string) int {
	for i, m := range standardMethods {
		if m == method {
			return i
		}
	}
	return len(standardMethods)
}

func buildEndpoint(path string, methods []string, h http.Handler) Endpoint {
	ep := Endpoint{Methods: methods, Path: path}
	if meta, ok := metaOf(h); ok {
		ep.Summary = meta.Summary
		ep.Description = meta.Description
		ep.Params = append([]Param(nil), meta.Params...)
	}
	if ep.Summary == "" {
		ep.Summary = endpointName(path, h)
	}
	ep.Params = mergePathParams(ep.Params, path)
	return ep
}

// mergePathParams fills in descriptions for declared path parameters and
// appends placeholders of the pattern that were not declared.
func mergePathParams(declared []Param, pattern string) []Param {
	placeholders := pathParams(pattern)
	if len(placeholders) == 0 {
		return declared
	}

	byName := make(map[string]Param, len(placeholders))
	for _, p := range placeholders {
		byName[p.Name] = p
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for i, p := range declared {
		seen.Add(p.Name)
		if ph, ok := byName[p.Name]; ok && p.Description == "" {
			declared[i].Description = ph.Description
		}
	}
	for _, p := range placeholders {
		if !seen.Contains(p.Name) {
			declared = append(declared, p)
		}
	}
	return declared
}

// pathParams returns the {name} and {name:regexp} placeholders of a chi
// route pattern in order.
func pathParams(pattern string) []Param {
	var params []Param
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '{' {
			continue
		}
		depth, j := 1, i+1
		for ; j < len(pattern) && depth > 0; j++ {
			switch pattern[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth != 0 {
			break
		}
		name, rexp, _ := strings.Cut(pattern[i+1:j-1], ":")
		i = j - 1
		if name == "" {
			continue
		}

		typ := "string"
		if digitPatterns.Contains(strings.TrimSuffix(strings.TrimPrefix(rexp, "^"), "$")) {
			typ = "int"
		}
		params = append(params, PathParam(name, typ, "Path parameter: "+name))
	}
	return params
}

// endpointName derives a summary for undocumented handlers from the handler
// function name, falling back to the last static path segment.
func endpointName(path string, h http.Handler) string {
	if name := handlerFuncName(innermost(h)); name != "" {
		return humanize(name)
	}
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		if s == "" || strings.HasPrefix(s, "{") || strings.Contains(s, "*") {
			continue
		}
		return humanize(s)
	}
	return ""
}

// handlerFuncName returns the bare Go name of a handler func. Closures are
// named after their enclosing function only when it follows the
// FooHandler factory convention; the Handler suffix is dropped.
func handlerFuncName(h http.Handler) string {
	v := reflect.ValueOf(h)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return ""
	}

	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")

	parts := strings.Split(name, ".")
	closure := false
	for len(parts) > 1 && isClosureSegment(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
		closure = true
	}
	if len(parts) < 2 {
		return ""
	}

	base := parts[len(parts)-1]
	if i := strings.IndexByte(base, '['); i >= 0 {
		base = base[:i]
	}
	if closure && !strings.HasSuffix(base, "Handler") {
		return ""
	}
	if base == "ServeHTTP" {
		return ""
	}
	return strings.TrimSuffix(base, "Handler")
}

func isClosureSegment(s string) bool {
	s = strings.TrimPrefix(s, "func")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// humanize turns "listBooks" or "user_profiles" into "List Books" and
// "User Profiles".
func humanize(s string) string {
	words := strings.FieldsFunc(strcase.SnakeCase(s), func(r rune) bool { return r == '_' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
