package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/smtp"
	"os"
	"strconv"
	"time"

	"ecommerce-backend/internal/auth"
	"ecommerce-backend/internal/checkout"
	"ecommerce-backend/internal/stores/kafka"
	"ecommerce-backend/pkg/ctxmanage"
	"ecommerce-backend/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Checkout places an order from the caller's cart. All storage effects happen
// in one transaction inside checkout.Conf; this handler only maps the outcome
// to HTTP and fires post-commit notifications.
func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	customerID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		slog.Error("invalid subject in claims", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var request struct {
		PaymentMethod string `json:"payment_method"`
	}
	// An empty body means the default payment method.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	// The transaction must run to commit or rollback even if the client
	// disconnects mid-checkout.
	ctx := context.WithoutCancel(c.Request.Context())

	placed, err := h.ck.PlaceOrder(ctx, customerID, request.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Cart empty"})
		case errors.Is(err, checkout.ErrInsufficientStock):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Insufficient stock"})
		default:
			slog.Error("error placing order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	slog.Info("order placed", slog.String(logkey.TraceID, traceId),
		slog.Int64("OrderID", placed.OrderID), slog.Int64("CustomerID", customerID), slog.String("Total", placed.Total.String()))

	go h.publishOrderPlaced(traceId, placed)
	go sendOrderConfirmationEmail(claims.Email, placed.OrderID)

	c.JSON(http.StatusCreated, gin.H{"order_id": placed.OrderID, "total": placed.Total})
}

func (h *Handler) ListMyOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	customerID, ok := principalID(c)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.o.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		slog.Error("error fetching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.o.ListAll(c.Request.Context())
	if err != nil {
		slog.Error("error fetching all orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}

// publishOrderPlaced emits one event per order line so fulfilment consumers
// can pick the order up. Best effort: a broker outage never fails a checkout
// that already committed.
func (h *Handler) publishOrderPlaced(traceId string, placed checkout.PlacedOrder) {
	if h.k == nil {
		return
	}

	for _, line := range placed.Lines {
		jsonData, err := json.Marshal(kafka.OrderPlacedEvent{
			OrderId:   placed.OrderID,
			ProductId: line.ProductID,
			Quantity:  line.Quantity,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Error("failed to marshal order placed event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}

		key := []byte(strconv.FormatInt(placed.OrderID, 10))
		if err := h.k.ProduceMessage(kafka.TopicOrderPlaced, key, jsonData); err != nil {
			slog.Error("failed to produce order placed event", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
	}
}

// sendOrderConfirmationEmail is best effort and skipped entirely when SMTP is
// not configured.
func sendOrderConfirmationEmail(to string, orderId int64) {
	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" || to == "" {
		return
	}
	smtpPort := os.Getenv("SMTP_PORT")
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")

	subject := "Order Confirmation"
	body := fmt.Sprintf("Thank you for your order! Your order ID is %d. We are processing it now.", orderId)

	from := "no-reply@example.com"
	message := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	smtpAuth := smtp.PlainAuth("", username, password, smtpHost)
	if err := smtp.SendMail(smtpHost+":"+smtpPort, smtpAuth, from, []string{to}, message); err != nil {
		slog.Error("failed to send confirmation email", slog.String(logkey.ERROR, err.Error()))
	}
}
