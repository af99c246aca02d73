package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailcore/storefront/internal/cart"
	"github.com/retailcore/storefront/internal/catalog"
	"github.com/retailcore/storefront/internal/httpx"
)

// getCartHandler godoc
// @Summary Cart snapshot priced against the live catalog
// @Tags cart
// @Produce json
// @Success 200 {object} cart.Snapshot
// @Router /cart [get]
func getCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := carts.Snapshot(c.Request.Context(), httpx.SessionID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "cart unavailable"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// cartCountHandler godoc
// @Summary Number of units in the cart
// @Tags cart
// @Produce json
// @Success 200 {object} cart.CountResponse
// @Router /cart/count [get]
func cartCountHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := carts.Count(c.Request.Context(), httpx.SessionID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "cart unavailable"})
			return
		}
		c.JSON(http.StatusOK, cart.CountResponse{Count: n})
	}
}

// addCartItemHandler godoc
// @Summary Add units of a product to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Param payload body cart.AddItemRequest true "line to add"
// @Success 200 {object} cart.CountResponse
// @Failure 400 {object} httpx.HTTPError
// @Failure 404 {object} httpx.HTTPError
// @Failure 409 {object} httpx.HTTPError
// @Router /cart/items [post]
func addCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cart.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "product_id and a positive quantity are required"})
			return
		}
		sid := httpx.SessionID(c)
		if err := carts.Add(c.Request.Context(), sid, req.ProductID, req.Quantity); err != nil {
			renderCartError(c, err)
			return
		}
		n, _ := carts.Count(c.Request.Context(), sid)
		c.JSON(http.StatusOK, cart.CountResponse{Count: n})
	}
}

// updateCartItemHandler godoc
// @Summary Set the quantity of a cart line; zero removes it
// @Tags cart
// @Accept json
// @Produce json
// @Param product_id path string true "product id"
// @Param payload body cart.UpdateItemRequest true "new quantity"
// @Success 200 {object} cart.CountResponse
// @Failure 404 {object} httpx.HTTPError
// @Failure 409 {object} httpx.HTTPError
// @Router /cart/items/{product_id} [put]
func updateCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cart.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "invalid payload"})
			return
		}
		sid := httpx.SessionID(c)
		if err := carts.Update(c.Request.Context(), sid, c.Param("product_id"), req.Quantity); err != nil {
			renderCartError(c, err)
			return
		}
		n, _ := carts.Count(c.Request.Context(), sid)
		c.JSON(http.StatusOK, cart.CountResponse{Count: n})
	}
}

// removeCartItemHandler godoc
// @Summary Remove a cart line
// @Tags cart
// @Produce json
// @Param product_id path string true "product id"
// @Success 200 {object} cart.CountResponse
// @Failure 404 {object} httpx.HTTPError
// @Router /cart/items/{product_id} [delete]
func removeCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := httpx.SessionID(c)
		if err := carts.Remove(c.Request.Context(), sid, c.Param("product_id")); err != nil {
			renderCartError(c, err)
			return
		}
		n, _ := carts.Count(c.Request.Context(), sid)
		c.JSON(http.StatusOK, cart.CountResponse{Count: n})
	}
}

// clearCartHandler godoc
// @Summary Empty the cart
// @Tags cart
// @Success 204
// @Router /cart [delete]
func clearCartHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := carts.Clear(c.Request.Context(), httpx.SessionID(c)); err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "cart unavailable"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func renderCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrBadQuantity):
		c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: err.Error()})
	case errors.Is(err, catalog.ErrProductNotFound):
		c.JSON(http.StatusNotFound, httpx.HTTPError{Error: err.Error()})
	case errors.Is(err, cart.ErrNotInCart):
		c.JSON(http.StatusNotFound, httpx.HTTPError{Error: err.Error()})
	case errors.Is(err, cart.ErrStockExceeded):
		c.JSON(http.StatusConflict, httpx.HTTPError{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "cart unavailable"})
	}
}
