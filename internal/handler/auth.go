package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NutMontree/kiosk/internal/account"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req account.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.accounts.Register(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusCreated, "User registered successfully")
}

// Login checks credentials only; no session or token is issued.
func (h *Handler) Login(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": profile})
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	var req credentials
	if !bindJSON(c, &req) {
		return
	}
	if err := h.accounts.UpdatePassword(c.Request.Context(), req.Email, req.Password); err != nil {
		fail(c, err)
		return
	}
	message(c, http.StatusOK, "Password updated successfully")
}
