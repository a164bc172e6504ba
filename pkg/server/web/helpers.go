package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// JSONError is the body of every error response.
type JSONError struct {
	Error string `json:"error"`
}

// RenderJSON sets the correct HTTP headers for JSON, then writes the specified data (typically a
// struct) encoded in JSON.
func RenderJSON(w http.ResponseWriter, data any) error {
	return RenderJSONStatus(w, http.StatusOK, data)
}

// RenderJSONStatus is RenderJSON with a status code other than 200.
func RenderJSONStatus(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Expires", "-1")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	return enc.Encode(data)
}

// RenderError writes a JSON error body with the given status.
func RenderError(w http.ResponseWriter, status int, message string) error {
	return RenderJSONStatus(w, status, &JSONError{Error: message})
}

// Reverse routing function.
func Reverse(name string, things ...any) string {
	// Convert the things to strings
	strs := make([]string, len(things))
	for i, th := range things {
		strs[i] = fmt.Sprint(th)
	}
	// Grab the route
	route := Router.Get(name)
	if route == nil {
		log.Error().Str("module", "web").Str("name", name).Msg("Unknown route name")
		return "/ROUTE-ERROR"
	}
	u, err := route.URL(strs...)
	if err != nil {
		log.Error().Str("module", "web").Str("name", name).Err(err).
			Msg("Failed to reverse route")
		return "/ROUTE-ERROR"
	}
	return u.Path
}
