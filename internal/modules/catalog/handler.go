package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hostelms/internal/pkg/response"
	"hostelms/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the room catalog endpoints. Mutations sit behind the
// staff gate; the listing may be wrapped in the response cache middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, staffOnly gin.HandlerFunc, cached gin.HandlerFunc) {
	rg.GET("/rooms", cached, h.ListRooms)
	rg.GET("/rooms/:id", h.GetRoom)
	rg.POST("/rooms", staffOnly, h.CreateRoom)
	rg.PUT("/rooms/:id", staffOnly, h.UpdateRoom)
	rg.DELETE("/rooms/:id", staffOnly, h.DeleteRoom)
}

func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	room, err := h.service.CreateRoom(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, room)
}

func (h *Handler) GetRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	room, err := h.service.GetRoom(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

func (h *Handler) ListRooms(c *gin.Context) {
	var f repository.RoomFilters

	f.Building = c.Query("building")
	f.Type = c.Query("type")
	f.Hostel = c.Query("hostel")

	if floor := c.Query("floor"); floor != "" {
		if val, err := strconv.Atoi(floor); err == nil {
			f.Floor = &val
		}
	}
	if avail := c.Query("available"); avail != "" {
		f.AvailableOnly = avail == "true" || avail == "1"
	}

	f.Limit = 20
	if limit := c.Query("limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 && val <= 100 {
			f.Limit = val
		}
	}
	f.Offset = 0
	if page := c.Query("page"); page != "" {
		if val, err := strconv.Atoi(page); err == nil && val > 0 {
			f.Offset = (val - 1) * f.Limit
		}
	}

	rooms, total, err := h.service.ListRooms(c.Request.Context(), f)
	if err != nil {
		handleError(c, err)
		return
	}

	totalPages := (int(total) + f.Limit - 1) / f.Limit
	currentPage := (f.Offset / f.Limit) + 1

	response.Success(c, http.StatusOK, gin.H{
		"rooms": rooms,
		"pagination": gin.H{
			"page":        currentPage,
			"limit":       f.Limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	room, err := h.service.UpdateRoom(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, room)
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	if err := h.service.DeleteRoom(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
