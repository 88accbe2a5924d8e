package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/bobmcallan/vire-tracker/internal/handlers"
)

// RouteHandler is a function type for HTTP handlers.
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers.
type MethodRouter map[string]RouteHandler

// RouteByMethod routes requests based on HTTP method. Unrouted methods get a
// JSON 405 with an Allow header.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		allowed := make([]string, 0, len(routes))
		for method := range routes {
			allowed = append(allowed, method)
		}
		sort.Strings(allowed)
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	handler(w, r)
}

// RouteResourceCollection handles the list + create pattern.
// GET -> list, POST -> create.
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, list, create RouteHandler) {
	routes := make(MethodRouter)
	if list != nil {
		routes[http.MethodGet] = list
	}
	if create != nil {
		routes[http.MethodPost] = create
	}
	RouteByMethod(w, r, routes)
}

// RouteResourceItem handles the get + update + delete pattern for /collection/{key}.
// GET -> get, PUT -> update, DELETE -> delete.
func RouteResourceItem(w http.ResponseWriter, r *http.Request, get, update, del RouteHandler) {
	routes := make(MethodRouter)
	if get != nil {
		routes[http.MethodGet] = get
	}
	if update != nil {
		routes[http.MethodPut] = update
	}
	if del != nil {
		routes[http.MethodDelete] = del
	}
	RouteByMethod(w, r, routes)
}
