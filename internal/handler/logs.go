package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NutMontree/kiosk/internal/attendance"
)

func (h *Handler) LogAccess(c *gin.Context) {
	var req attendance.LogInput
	if !bindJSON(c, &req) {
		return
	}
	id, err := h.logs.Log(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Log recorded successfully", "id": id})
}

func (h *Handler) ListAccess(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	entries, err := h.logs.Recent(c.Request.Context(), c.Query("user_id"), c.Query("room_id"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
