package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NutMontree/kiosk/internal/directory"
)

// TeacherStatus feeds the dashboard: all staff, all rooms, and the server time.
func (h *Handler) TeacherStatus(c *gin.Context) {
	ctx := c.Request.Context()
	teachers, err := h.staff.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	rooms, err := h.rooms.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"teachers":  teachers,
		"rooms":     rooms,
		"timestamp": h.now().Format(time.RFC3339Nano),
	})
}

func (h *Handler) AddStaff(c *gin.Context) {
	var req directory.NewStaff
	if !bindJSON(c, &req) {
		return
	}
	if err := h.staff.Add(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusCreated, "Staff added successfully")
}

func (h *Handler) UpdateStaff(c *gin.Context) {
	var req struct {
		StaffID directory.ID `json:"staff_id"`
		directory.StaffPatch
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.staff.Update(c.Request.Context(), string(req.StaffID), req.StaffPatch); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Staff updated successfully")
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	if err := h.staff.Delete(c.Request.Context(), c.Query("staff_id")); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Staff deleted successfully")
}

func (h *Handler) DeleteStaffBulk(c *gin.Context) {
	var req struct {
		StaffIDs []directory.ID `json:"staff_ids"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.staff.DeleteMany(c.Request.Context(), directory.IDs(req.StaffIDs))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Successfully deleted %d staff", n),
		"deleted_count": n,
	})
}
