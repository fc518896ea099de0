package approuter

import (
	"net/http"
	"sort"

	"github.com/ruteri/webapp-serving-backend/routing"
)

// viewsController exposes the configured server-rendered pages as route
// descriptors, one GET route per path, in sorted path order so registration
// stays deterministic.
type viewsController struct {
	views    map[string]ViewFunc
	template string
}

func (v *viewsController) Name() string { return "views" }

func (v *viewsController) Routes() []routing.Descriptor {
	paths := make([]string, 0, len(v.views))
	for p := range v.views {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	descriptors := make([]routing.Descriptor, 0, len(paths))
	for _, p := range paths {
		view := v.views[p]
		descriptors = append(descriptors, routing.Descriptor{
			Method:   routing.MethodGet,
			Path:     p,
			Endpoint: v.endpoint(view),
		})
	}
	return descriptors
}

// endpoint renders the view for the incoming URL, wraps the markup in the
// HTML template, and responds 200. Render failures propagate to the standard
// error path.
func (v *viewsController) endpoint(view ViewFunc) routing.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		markup, err := view(r.URL.Path)
		if err != nil {
			return err
		}

		page, err := renderPage(v.template, markup)
		if err != nil {
			return err
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, err = w.Write([]byte(page))
		return err
	}
}
