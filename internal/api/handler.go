// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"movement-server/internal/controller"
	"movement-server/internal/models"

	"github.com/labstack/echo/v4"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// Controller operations exposed over HTTP
type Controller interface {
	Execute(ctx context.Context, req models.MovementRequest, source string) (models.MovementResponse, error)
	Abort() (string, error)
	Status() controller.Status
	FrontRange() (float64, bool)
	History(limit int) ([]models.CommandRecord, error)
}

// Handler HTTP handlers for the movement server
type Handler struct {
	ctrl Controller
}

// NewHandler creates the HTTP handlers
func NewHandler(ctrl Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// HealthCheck liveness probe
func (h *Handler) HealthCheck(c echo.Context) error {
	data := map[string]interface{}{
		"service":   "movement-server",
		"timestamp": time.Now().Unix(),
	}
	return c.JSON(http.StatusOK, SuccessResponse("Service is healthy", data))
}

// GetStatus controller, pose and host snapshot
func (h *Handler) GetStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse("Status retrieved successfully", h.ctrl.Status()))
}

// GetFrontRange latest forward laser reading
func (h *Handler) GetFrontRange(c echo.Context) error {
	r, ok := h.ctrl.FrontRange()
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse("No range scan received yet"))
	}
	return c.JSON(http.StatusOK, SuccessResponse("Front range retrieved successfully", map[string]float64{"range": r}))
}

// ExecuteMovement runs a movement command and waits for its response.
// The command outcome is reported in the body; 200 is returned even when success=false.
func (h *Handler) ExecuteMovement(c echo.Context) error {
	var req models.MovementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse("Invalid request body"))
	}
	if req.Move == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse("move is required"))
	}

	resp, err := h.ctrl.Execute(c.Request().Context(), req, controller.SourceHTTP)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return c.JSON(http.StatusRequestTimeout, ErrorResponse("request cancelled before the command completed"))
		}
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse(err.Error()))
	}

	return c.JSON(http.StatusOK, resp)
}

// AbortMovement cancels the command in flight
func (h *Handler) AbortMovement(c echo.Context) error {
	id, err := h.ctrl.Abort()
	if errors.Is(err, controller.ErrNoCommand) {
		return c.JSON(http.StatusConflict, ErrorResponse(err.Error()))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse(err.Error()))
	}
	return c.JSON(http.StatusOK, SuccessResponse("Abort requested", map[string]string{"id": id}))
}

// ListCommands recent command history
func (h *Handler) ListCommands(c echo.Context) error {
	limit := defaultHistoryLimit
	if s := c.QueryParam("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse("limit must be a positive integer"))
		}
		limit = min(l, maxHistoryLimit)
	}

	records, err := h.ctrl.History(limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse(err.Error()))
	}

	list := ListResponse{Items: records, Count: len(records), Limit: limit}
	return c.JSON(http.StatusOK, SuccessResponse("Command history retrieved successfully", list))
}
