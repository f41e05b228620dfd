package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bookhaven/library-system/internal/api/metrics"
	"github.com/bookhaven/library-system/internal/api/middleware"
	"github.com/bookhaven/library-system/internal/core/domain"
	"github.com/bookhaven/library-system/internal/core/ports"
)

// PaymentHandler handles the hosted checkout flow.
type PaymentHandler struct {
	service ports.PaymentService
	store   middleware.PrincipalStore
}

func NewPaymentHandler(service ports.PaymentService, store middleware.PrincipalStore) *PaymentHandler {
	return &PaymentHandler{service: service, store: store}
}

type checkoutRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type checkoutResponse struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

type confirmRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type confirmResponse struct {
	Message          string          `json:"message"`
	AlreadyProcessed bool            `json:"alreadyProcessed"`
	Payment          *domain.Payment `json:"payment,omitempty"`
}

// Checkout handles POST /v1/payments/checkout: opens a hosted checkout
// session for one of the caller's pending orders.
//
// @Summary      Open a hosted checkout session
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      checkoutRequest  true  "Order to pay"
// @Success      201   {object}  checkoutResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/payments/checkout [post]
func (h *PaymentHandler) Checkout(c echo.Context) error {
	email, err := principalEmail(c)
	if err != nil {
		return err
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Checkout(c.Request().Context(), ports.CheckoutInput{
		OrderID:   req.OrderID,
		UserEmail: email,
	})
	if err != nil {
		return err
	}

	metrics.CheckoutSessionsTotal.Inc()
	return c.JSON(http.StatusCreated, checkoutResponse{
		SessionID:   res.SessionID,
		CheckoutURL: res.CheckoutURL,
	})
}

// Confirm handles POST /v1/payments/confirm, the provider's completion
// callback. The route carries no bearer token; replay safety comes from the
// duplicate-check read and the Redis guard, not from authentication.
//
// @Summary      Confirm a completed checkout session
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        body  body      confirmRequest  true  "Completed session"
// @Success      200   {object}  confirmResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/payments/confirm [post]
func (h *PaymentHandler) Confirm(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Confirm(c.Request().Context(), ports.ConfirmInput{SessionID: req.SessionID})
	if err != nil {
		metrics.PaymentConfirmationsTotal.WithLabelValues("error").Inc()
		return err
	}

	if res.AlreadyProcessed {
		metrics.PaymentConfirmationsTotal.WithLabelValues("replay").Inc()
		return c.JSON(http.StatusOK, confirmResponse{
			Message:          "payment already processed",
			AlreadyProcessed: true,
			Payment:          res.Payment,
		})
	}

	metrics.PaymentConfirmationsTotal.WithLabelValues("confirmed").Inc()
	return c.JSON(http.StatusOK, confirmResponse{
		Message: "payment confirmed",
		Payment: res.Payment,
	})
}

// List handles GET /v1/payments?email=. Owner or staff only.
//
// @Summary      List payments for a customer
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        email  query     string  true  "Customer email; must match the caller unless staff"
// @Success      200    {array}   domain.Payment
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /v1/payments [get]
func (h *PaymentHandler) List(c echo.Context) error {
	email := strings.TrimSpace(strings.ToLower(c.QueryParam("email")))
	if err := requireSelfOrStaff(c, h.store, email); err != nil {
		return err
	}

	payments, err := h.service.ListByEmail(c.Request().Context(), email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}
