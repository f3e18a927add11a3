package llmstxt

import (
	"reflect"
	"strconv"
	"strings"
)

// ParamLocation is where a parameter is read from.
type ParamLocation string

const (
	InPath   ParamLocation = "path"
	InQuery  ParamLocation = "query"
	InHeader ParamLocation = "header"
	InBody   ParamLocation = "body"
)

// Param describes one endpoint parameter.
type Param struct {
	Name        string        `json:"name" yaml:"name"`
	In          ParamLocation `json:"in,omitempty" yaml:"in,omitempty"`
	Type        string        `json:"type" yaml:"type"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Default     any           `json:"default,omitempty" yaml:"default,omitempty"`
	HasDefault  bool          `json:"hasDefault,omitempty" yaml:"hasDefault,omitempty"`
}

// Required reports whether callers must supply the parameter. Path
// parameters are always required; everything else is required unless it
// has a default.
func (p Param) Required() bool {
	if p.In == InPath {
		return true
	}
	return !p.HasDefault
}

// WithDefault returns a copy of p that is optional with the given default.
func (p Param) WithDefault(v any) Param {
	p.Default = v
	p.HasDefault = true
	return p
}

// Optional returns a copy of p that is optional with no default value.
func (p Param) Optional() Param {
	return p.WithDefault(nil)
}

// PathParam declares a path parameter.
func PathParam(name, typ, description string) Param {
	return Param{Name: name, In: InPath, Type: typ, Description: description}
}

// QueryParam declares a required query parameter.
func QueryParam(name, typ, description string) Param {
	return Param{Name: name, In: InQuery, Type: typ, Description: description}
}

// HeaderParam declares a required header parameter.
func HeaderParam(name, typ, description string) Param {
	return Param{Name: name, In: InHeader, Type: typ, Description: description}
}

// BodyParam declares a required body field.
func BodyParam(name, typ, description string) Param {
	return Param{Name: name, In: InBody, Type: typ, Description: description}
}

// ParamsFrom derives parameters from the exported fields of a struct, in
// declaration order. The location and name come from the first of the
// path, query, header or json tags present on the field; untagged fields
// and fields tagged "-" are skipped. Embedded structs are flattened.
//
//	type listBooksQuery struct {
//		Genre    *string `query:"genre" desc:"Filter books by genre"`
//		PageSize int     `query:"pageSize" default:"20" desc:"Page size"`
//	}
//
// A field is optional when it has a default tag, is a pointer, or is a json
// field marked omitempty.
func ParamsFrom(v any) []Param {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var params []Param
	collectParams(t, &params)
	return params
}

var locationTags = []struct {
	tag string
	in  ParamLocation
}{
	{"path", InPath},
	{"query", InQuery},
	{"header", InHeader},
	{"json", InBody},
}

func collectParams(t reflect.Type, out *[]Param) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && !hasLocationTag(f) {
				collectParams(ft, out)
				continue
			}
		}
		if !f.IsExported() {
			continue
		}

		p, ok := fieldParam(f)
		if !ok {
			continue
		}
		*out = append(*out, p)
	}
}

func hasLocationTag(f reflect.StructField) bool {
	for _, lt := range locationTags {
		if _, ok := f.Tag.Lookup(lt.tag); ok {
			return true
		}
	}
	return false
}

func fieldParam(f reflect.StructField) (Param, bool) {
	for _, lt := range locationTags {
		raw, ok := f.Tag.Lookup(lt.tag)
		if !ok {
			continue
		}
		name, opts, _ := strings.Cut(raw, ",")
		if name == "-" {
			return Param{}, false
		}
		if name == "" {
			name = f.Name
		}

		p := Param{
			Name:        name,
			In:          lt.in,
			Type:        TypeLabel(f.Type),
			Description: f.Tag.Get("desc"),
		}
		if def, ok := f.Tag.Lookup("default"); ok {
			p = p.WithDefault(def)
		} else if f.Type.Kind() == reflect.Pointer || hasOption(opts, "omitempty") {
			p = p.Optional()
		}
		return p, true
	}
	return Param{}, false
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

// TypeLabel returns the label rendered for a Go type: pointers are
// dereferenced and named types use their bare name.
func TypeLabel(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice:
		return "[]" + TypeLabel(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeLabel(t.Elem())
	case reflect.Map:
		return "map[" + TypeLabel(t.Key()) + "]" + TypeLabel(t.Elem())
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
