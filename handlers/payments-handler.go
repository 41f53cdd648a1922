package handlers

import (
	"log/slog"
	"net/http"

	"ecommerce-backend/pkg/ctxmanage"
	"ecommerce-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPayments(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.pay.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("error fetching payments", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}
