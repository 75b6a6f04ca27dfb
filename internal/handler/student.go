package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NutMontree/kiosk/internal/apperr"
	"github.com/NutMontree/kiosk/internal/directory"
)

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.students.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

// GetStudent answers kiosk lookups with a {found, data|message} envelope.
func (h *Handler) GetStudent(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("student_id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"found": true, "data": student})
	case apperr.KindOf(err) == apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"found": false, "message": apperr.Message(err)})
	default:
		fail(c, err)
	}
}

func (h *Handler) AddStudent(c *gin.Context) {
	var req directory.NewStudent
	if !bindJSON(c, &req) {
		return
	}
	if err := h.students.Add(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusCreated, "Student added successfully")
}

func (h *Handler) UpdateStudent(c *gin.Context) {
	var req struct {
		StudentID directory.ID `json:"student_id"`
		directory.StudentPatch
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.students.Update(c.Request.Context(), string(req.StudentID), req.StudentPatch); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student updated successfully", "student_id": string(req.StudentID)})
}

func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Query("student_id")); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Student deleted successfully")
}

func (h *Handler) DeleteStudentBulk(c *gin.Context) {
	var req struct {
		StudentIDs []directory.ID `json:"student_ids"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.students.DeleteMany(c.Request.Context(), directory.IDs(req.StudentIDs))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       fmt.Sprintf("Successfully deleted %d students", n),
		"deleted_count": n,
	})
}
