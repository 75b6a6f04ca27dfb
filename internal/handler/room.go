package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetRoomLock receives a lock decision from the upstream kiosk logic.
func (h *Handler) SetRoomLock(c *gin.Context) {
	var req struct {
		RoomID string `json:"room_id"`
		Status string `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.rooms.SetLock(c.Request.Context(), req.RoomID, req.Status); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Status updated to %s", req.Status),
		"room_id": req.RoomID,
	})
}

// RoomLockStatus is polled by the lock hardware.
func (h *Handler) RoomLockStatus(c *gin.Context) {
	roomID := c.Param("room_id")
	status, err := h.rooms.LockStatus(c.Request.Context(), roomID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": roomID, "lock_status": status})
}
