// Package nav maps client paths such as "/card/42" to named views and
// computes which header links a user sees.
package nav

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/bcards/internal/client/models"
)

// View names a screen of the client.
type View string

const (
	ViewHome     View = "home"
	ViewAbout    View = "about"
	ViewRegister View = "register"
	ViewLogin    View = "login"
	ViewFavCards View = "fav-cards"
	ViewMyCards  View = "my-cards"
	ViewNewCard  View = "new-card"
	ViewCard     View = "card"
	ViewProfile  View = "profile"
	ViewNotFound View = "not-found"
)

// Route is the outcome of resolving a path.
type Route struct {
	View   View
	Path   string
	CardID string
}

// Router resolves paths using a chi mux. Handlers never write a response;
// they only record which route matched.
type Router struct {
	mux *chi.Mux
}

type matchKey struct{}

type match struct {
	route Route
}

func NewRouter() *Router {
	r := chi.NewRouter()

	view := func(v View) http.HandlerFunc {
		return func(_ http.ResponseWriter, req *http.Request) {
			if m, ok := req.Context().Value(matchKey{}).(*match); ok {
				m.route.View = v
			}
		}
	}

	r.Get("/", view(ViewHome))
	r.Get("/home", view(ViewHome))
	r.Get("/about", view(ViewAbout))
	r.Get("/register", view(ViewRegister))
	r.Get("/login", view(ViewLogin))
	r.Get("/fav-cards", view(ViewFavCards))
	r.Get("/profile", view(ViewProfile))
	r.Route("/my-cards", func(r chi.Router) {
		r.Get("/", view(ViewMyCards))
		r.Get("/new", view(ViewNewCard))
	})
	r.Get("/card/{id}", func(w http.ResponseWriter, req *http.Request) {
		view(ViewCard)(w, req)
		if m, ok := req.Context().Value(matchKey{}).(*match); ok {
			m.route.CardID = chi.URLParam(req, "id")
		}
	})
	r.NotFound(view(ViewNotFound))
	r.MethodNotAllowed(view(ViewNotFound))

	return &Router{mux: r}
}

// Resolve returns the route for path. Unknown paths resolve to
// ViewNotFound; a missing leading slash is added.
func (r *Router) Resolve(path string) Route {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	m := &match{route: Route{View: ViewNotFound, Path: path}}

	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return m.route
	}
	req = req.WithContext(context.WithValue(req.Context(), matchKey{}, m))
	r.mux.ServeHTTP(discard{}, req)

	if m.route.View == ViewCard && m.route.CardID == "" {
		m.route.View = ViewNotFound
	}
	return m.route
}

// discard is a ResponseWriter that drops everything.
type discard struct{}

func (discard) Header() http.Header         { return http.Header{} }
func (discard) Write(b []byte) (int, error) { return len(b), nil }
func (discard) WriteHeader(int)             {}

// Link is a header navigation entry.
type Link struct {
	Label string
	Path  string
}

var (
	linkAbout   = Link{Label: "ABOUT", Path: "/about"}
	linkFav     = Link{Label: "FAV CARDS", Path: "/fav-cards"}
	linkMine    = Link{Label: "MY CARDS", Path: "/my-cards"}
	linkLogin   = Link{Label: "LOGIN", Path: "/login"}
	linkSignup  = Link{Label: "SIGNUP", Path: "/register"}
	linkSignOut = Link{Label: "SIGN OUT", Path: ""}
)

// Links returns the header links visible to user; nil means logged out.
func Links(user *models.User) []Link {
	links := []Link{linkAbout}
	if user == nil {
		return append(links, linkLogin, linkSignup)
	}
	links = append(links, linkFav)
	if user.CanManageCards() {
		links = append(links, linkMine)
	}
	return append(links, linkSignOut)
}
