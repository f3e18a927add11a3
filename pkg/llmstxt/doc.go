// Package llmstxt serves an llms.txt document describing a chi application.
//
// The document is rebuilt on every request from the router's route tree:
// each route handler becomes an endpoint entry with its methods, summary,
// description and parameters. Handlers carry documentation by being wrapped
// with Describe; undocumented handlers are named after their Go function or
// their last path segment.
//
//	r := chi.NewRouter()
//	r.Method(http.MethodGet, "/books", llmstxt.Describe(listBooks, llmstxt.Meta{
//		Summary: "Get all books",
//		Params:  llmstxt.ParamsFrom(listBooksQuery{}),
//	}))
//	llmstxt.Register(r, "Bookstore API", "An API for managing a bookstore catalog.")
package llmstxt
