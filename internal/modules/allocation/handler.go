package allocation

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hostelms/internal/domain"
	"hostelms/internal/middleware"
	"hostelms/internal/pkg/response"
	"hostelms/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the allocation and availability endpoints. All of
// them require an authenticated actor; write authorization is decided inside
// the service against the hostel-scoping policy.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/allocations", h.RequestAllocation)
	rg.GET("/allocations", h.ListAllocations)
	rg.GET("/allocations/:id", h.GetAllocation)
	rg.POST("/allocations/:id/end", h.EndAllocation)
	rg.POST("/allocations/:id/cancel", h.CancelAllocation)
	rg.POST("/allocations/:id/reassign", h.ReassignBed)
	rg.DELETE("/allocations/:id", h.DeleteAllocation)

	rg.GET("/rooms/:id/availability", h.RoomAvailability)
	rg.GET("/hostels/:hostel/availability", h.HostelAvailability)
}

func (h *Handler) RequestAllocation(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req RequestAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	alloc, err := h.service.RequestAllocation(c.Request.Context(), actor, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, alloc)
}

func (h *Handler) ListAllocations(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var f repository.AllocationFilters
	if roomID := c.Query("room_id"); roomID != "" {
		if val, err := strconv.ParseInt(roomID, 10, 64); err == nil {
			f.RoomID = val
		}
	}
	if residentID := c.Query("resident_id"); residentID != "" {
		if val, err := strconv.ParseInt(residentID, 10, 64); err == nil {
			f.ResidentID = val
		}
	}
	f.Hostel = c.Query("hostel")
	if status := c.Query("status"); status != "" {
		f.Status = domain.AllocationStatus(status)
	}

	f.Limit = 50
	if limit := c.Query("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 && val <= 200 {
			f.Limit = val
		}
	}
	if page := c.Query("page"); page != "" {
		if val, err := strconv.Atoi(page); err == nil && val > 0 {
			f.Offset = (val - 1) * f.Limit
		}
	}

	allocations, err := h.service.ListAllocations(c.Request.Context(), actor, f)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, allocations)
}

func (h *Handler) GetAllocation(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	alloc, err := h.service.GetAllocation(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, alloc)
}

func (h *Handler) EndAllocation(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req EndAllocationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
			return
		}
	}

	var endDate time.Time
	if req.EndDate != nil {
		endDate = *req.EndDate
	}

	alloc, err := h.service.EndAllocation(c.Request.Context(), actor, id, endDate)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, alloc)
}

func (h *Handler) CancelAllocation(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	alloc, err := h.service.CancelAllocation(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, alloc)
}

func (h *Handler) ReassignBed(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	alloc, err := h.service.ReassignBed(c.Request.Context(), actor, id, req.BedNumber)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, alloc)
}

func (h *Handler) DeleteAllocation(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAllocation(c.Request.Context(), actor, id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Allocation deleted successfully"})
}

func (h *Handler) RoomAvailability(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	snap, err := h.service.RoomAvailability(c.Request.Context(), roomID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

func (h *Handler) HostelAvailability(c *gin.Context) {
	snap, err := h.service.HostelAvailability(c.Request.Context(), c.Param("hostel"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, snap)
}

func (h *Handler) actorAndID(c *gin.Context) (domain.Actor, int64, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return domain.Actor{}, 0, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid allocation ID")
		return domain.Actor{}, 0, false
	}
	return actor, id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
