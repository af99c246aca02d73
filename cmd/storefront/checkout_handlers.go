package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailcore/storefront/internal/catalog"
	"github.com/retailcore/storefront/internal/httpx"
	"github.com/retailcore/storefront/internal/order"
)

// checkoutHandler godoc
// @Summary Turn the session cart into an order
// @Tags checkout
// @Accept json
// @Produce json
// @Param payload body order.CheckoutRequest true "customer and shipping data"
// @Success 201 {object} order.ConfirmationResponse
// @Failure 400 {object} httpx.HTTPError
// @Failure 409 {object} httpx.HTTPError
// @Router /checkout [post]
func checkoutHandler(rec *order.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "name, email and shipping address are required"})
			return
		}

		o, items, err := rec.Checkout(c.Request.Context(), httpx.SessionID(c), order.CustomerInfo{
			Name:            req.CustomerName,
			Email:           req.CustomerEmail,
			Phone:           req.CustomerPhone,
			ShippingAddress: req.ShippingAddress,
			Notes:           req.Notes,
		})
		if err != nil {
			status, msg := checkoutStatus(err)
			c.JSON(status, httpx.HTTPError{Error: msg})
			return
		}
		c.JSON(http.StatusCreated, order.ConfirmationResponse{Order: *o, Items: items})
	}
}

func checkoutStatus(err error) (int, string) {
	var ise *catalog.InsufficientStockError
	switch {
	case errors.As(err, &ise):
		return http.StatusConflict, ise.Error()
	case errors.Is(err, order.ErrEmptyCart):
		return http.StatusBadRequest, order.ErrEmptyCart.Error()
	case errors.Is(err, order.ErrInvalidCustomerInfo):
		return http.StatusBadRequest, order.ErrInvalidCustomerInfo.Error()
	default:
		return http.StatusInternalServerError, "checkout failed"
	}
}

// getOrderHandler godoc
// @Summary Order confirmation view
// @Tags checkout
// @Produce json
// @Param id path string true "order id"
// @Success 200 {object} order.ConfirmationResponse
// @Failure 404 {object} httpx.HTTPError
// @Router /orders/{id} [get]
func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "order not found"})
			return
		}
		c.JSON(http.StatusOK, order.ConfirmationResponse{Order: *o, Items: items})
	}
}
