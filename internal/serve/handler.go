package serve

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"courses-backend/internal/courses"
	"courses-backend/internal/shared/metrics"
	"courses-backend/internal/shared/server/respond"
)

// Handler exposes course files over HTTP, gated by per-course tokens.
type Handler struct {
	Resolver *Resolver
}

// NewHandler constructs a Handler.
func NewHandler(resolver *Resolver) *Handler {
	return &Handler{Resolver: resolver}
}

// RegisterRoutes attaches the course file surface to the engine root.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/courses/:id/*filepath", h.serve)
}

func (h *Handler) serve(c *gin.Context) {
	courseID := c.Param("id")
	token := c.Query("token")
	relPath := strings.TrimPrefix(c.Param("filepath"), "/")

	if relPath == "" {
		h.serveIndex(c, courseID, token)
		return
	}

	path, err := h.Resolver.Resolve(c.Request.Context(), courseID, token, relPath)
	if err != nil {
		h.deny(c, err)
		return
	}

	metrics.IncServeFile()
	c.File(path)
}

func (h *Handler) serveIndex(c *gin.Context, courseID, token string) {
	entry, listing, err := h.Resolver.ResolveIndex(c.Request.Context(), courseID, token)
	if err != nil {
		h.deny(c, err)
		return
	}

	if entry != "" {
		c.Redirect(http.StatusFound, courseFileURL(courseID, entry, token))
		return
	}

	var b strings.Builder
	b.WriteString("<h3>Available HTML files:</h3>")
	for i, name := range listing {
		if i > 0 {
			b.WriteString("<br>")
		}
		fmt.Fprintf(&b, "<a href='%s' target='_blank'>%s</a>",
			courseFileURL(courseID, name, token), html.EscapeString(name))
	}
	metrics.IncServeFile()
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}

// deny maps resolver denials onto bare status codes; no detail leaves
// the boundary.
func (h *Handler) deny(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		metrics.IncServeForbidden()
		respond.Status(c, http.StatusForbidden)
	case errors.Is(err, courses.ErrNotFound):
		metrics.IncServeNotFound()
		respond.Status(c, http.StatusNotFound)
	default:
		respond.Status(c, http.StatusInternalServerError)
	}
}

func courseFileURL(courseID, relPath, token string) string {
	return fmt.Sprintf("/courses/%s/%s?token=%s", courseID, relPath, url.QueryEscape(token))
}
