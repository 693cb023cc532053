package providers

import (
	"net/http"
	"reployer/internal/structures"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(http.MethodGet, url, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(http.MethodPost, url, handler)
}

// add merges handlers registered for the same url so one mux entry
// can answer several methods.
func (rp *RouterProvider) add(method, url string, handler http.Handler) {
	for i := range rp.routes {
		if rp.routes[i].Url == url {
			rp.routes[i].Methods[method] = handler
			rp.routes[i].Handler = methodHandler(rp.routes[i].Methods)
			return
		}
	}
	methods := map[string]http.Handler{method: handler}
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Methods: methods,
		Handler: methodHandler(methods),
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}

func methodHandler(methods map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler, ok := methods[r.Method]
		if !ok {
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
