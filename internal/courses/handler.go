package courses

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"courses-backend/internal/shared/server/middleware"
	"courses-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches course query routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/courses", h.list)
}

func (h *Handler) list(c *gin.Context) {
	owner := middleware.UserIDFromContext(c)

	var (
		recs []CourseRecord
		err  error
	)
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		recs, err = h.Svc.Find(c.Request.Context(), owner, q)
	} else {
		recs, err = h.Svc.List(c.Request.Context(), owner)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list courses", nil)
		}
		return
	}

	resp := make([]CourseResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, h.Svc.toResponse(rec))
	}
	respond.JSON(c, http.StatusOK, resp)
}
