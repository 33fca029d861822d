package handlers

import (
	"net/http"

	"github.com/dmitrymomot/speakerhub"
)

// Info is the body of GET /.
type Info struct {
	Detail  string `json:"detail"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InfoHandler serves the service banner.
type InfoHandler struct {
	info Info
}

// NewInfo creates the banner handler.
func NewInfo(name, version string) *InfoHandler {
	return &InfoHandler{info: Info{
		Detail:  name + " is running",
		Name:    name,
		Version: version,
	}}
}

// Routes declares GET /.
func (h *InfoHandler) Routes(r speakerhub.Router) {
	r.GET("/", h.index)
}

func (h *InfoHandler) index(c speakerhub.Context) error {
	return c.JSON(http.StatusOK, h.info)
}
