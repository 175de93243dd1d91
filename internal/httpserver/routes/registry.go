package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/airwave/internal/httpserver/deps"
)

// Registrar mounts one group of routes. Registrars apply their own
// middlewares since most of them depend on deps.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar, called from each route file's init.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered route group on r.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
