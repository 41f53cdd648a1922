package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"ecommerce-backend/internal/staff"
	"ecommerce-backend/pkg/ctxmanage"
	"ecommerce-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListStaff(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.st.ListStaff(c.Request.Context())
	if err != nil {
		slog.Error("error fetching staff", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": list})
}

func (h *Handler) AddStaff(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newStaff staff.NewStaff
	if err := c.ShouldBindJSON(&newStaff); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(newStaff); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid staff fields"})
		return
	}

	member, err := h.st.InsertStaff(c.Request.Context(), newStaff)
	if err != nil {
		slog.Error("error adding staff", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *Handler) DeleteStaff(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	staffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid staff id"})
		return
	}

	if err := h.st.DeleteStaff(c.Request.Context(), staffID); err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Staff member not found"})
			return
		}
		slog.Error("error deleting staff", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff deleted"})
}
