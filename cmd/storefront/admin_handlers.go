package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/retailcore/storefront/internal/catalog"
	"github.com/retailcore/storefront/internal/httpx"
	"github.com/retailcore/storefront/internal/order"
)

// listOrdersHandler godoc
// @Summary List orders, newest first
// @Tags admin
// @Produce json
// @Param status query string false "pending|processing|shipped|delivered|cancelled"
// @Param limit query int false "page size (max 100)"
// @Param offset query int false "page offset"
// @Success 200 {object} map[string]any
// @Failure 400 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/orders [get]
func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := order.Status(c.Query("status"))
		if status != "" && !order.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "invalid status"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		orders, err := repo.List(c.Request.Context(), order.Query{Status: status, Limit: limit, Offset: offset})
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "orders unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": orders, "limit": limit, "offset": offset})
	}
}

// updateOrderStatusHandler godoc
// @Summary Move an order through its lifecycle
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "order id"
// @Param payload body order.UpdateStatusRequest true "new status"
// @Success 200 {object} order.Order
// @Failure 400 {object} httpx.HTTPError
// @Failure 404 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/orders/{id}/status [put]
func updateOrderStatusHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "status is required"})
			return
		}
		status := order.Status(req.Status)
		if !order.ValidStatus(status) {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "invalid status"})
			return
		}

		id := c.Param("id")
		if err := repo.UpdateStatus(c.Request.Context(), id, status); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "update failed"})
			return
		}

		o, _, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "refetch failed"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// adminListProductsHandler godoc
// @Summary List products including inactive ones
// @Tags admin
// @Produce json
// @Success 200 {object} catalog.ListResponse
// @Security BasicAuth
// @Router /admin/products [get]
func adminListProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return listProducts(repo, true)
}

// createProductHandler godoc
// @Summary Create a product
// @Tags admin
// @Accept json
// @Produce json
// @Param payload body catalog.CreateProductRequest true "product"
// @Success 201 {object} catalog.Product
// @Failure 400 {object} httpx.HTTPError
// @Failure 404 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/products [post]
func createProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "name is required"})
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil || price.IsNegative() {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "price must be a non-negative decimal"})
			return
		}
		if req.Stock < 0 {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "stock must be non-negative"})
			return
		}
		if req.CategoryID != "" {
			if _, err := repo.GetCategory(c.Request.Context(), req.CategoryID); err != nil {
				c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "category not found"})
				return
			}
		}

		p := &catalog.Product{
			ID:          uuid.NewString(),
			CategoryID:  req.CategoryID,
			Name:        req.Name,
			Description: req.Description,
			Price:       price,
			Stock:       req.Stock,
			Active:      true,
		}
		if err := repo.CreateProduct(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "create failed"})
			return
		}
		created, err := repo.GetProduct(c.Request.Context(), p.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "refetch failed"})
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// updateProductHandler godoc
// @Summary Update a product; empty fields keep current values
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "product id"
// @Param payload body catalog.UpdateProductRequest true "fields to change"
// @Success 200 {object} catalog.Product
// @Failure 400 {object} httpx.HTTPError
// @Failure 404 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/products/{id} [put]
func updateProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "invalid payload"})
			return
		}

		id := c.Param("id")
		current, err := repo.GetProduct(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "product not found"})
			return
		}

		updatePrice := req.Price != ""
		price := decimal.Zero
		if updatePrice {
			price, err = decimal.NewFromString(req.Price)
			if err != nil || price.IsNegative() {
				c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "price must be a non-negative decimal"})
				return
			}
		}
		stock := current.Stock
		if req.Stock != nil {
			if *req.Stock < 0 {
				c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "stock must be non-negative"})
				return
			}
			stock = *req.Stock
		}
		if req.CategoryID != "" {
			if _, err := repo.GetCategory(c.Request.Context(), req.CategoryID); err != nil {
				c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "category not found"})
				return
			}
		}

		p := &catalog.Product{
			ID:          id,
			CategoryID:  req.CategoryID,
			Name:        req.Name,
			Description: req.Description,
			Price:       price,
			Stock:       stock,
		}
		if err := repo.UpdateProduct(c.Request.Context(), p, updatePrice); err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "update failed"})
			return
		}

		updated, err := repo.GetProduct(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "refetch failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// setProductActiveHandler godoc
// @Summary Activate or deactivate a product
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "product id"
// @Param payload body catalog.SetActiveRequest true "visibility"
// @Success 200 {object} catalog.Product
// @Failure 400 {object} httpx.HTTPError
// @Failure 404 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/products/{id}/active [put]
func setProductActiveHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.SetActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "active is required"})
			return
		}

		id := c.Param("id")
		if err := repo.SetProductActive(c.Request.Context(), id, *req.Active); err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "update failed"})
			return
		}
		p, err := repo.GetProduct(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "refetch failed"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary Hard-delete a product; historical order lines keep their snapshots
// @Tags admin
// @Param id path string true "product id"
// @Success 204
// @Failure 404 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/products/{id} [delete]
func deleteProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.DeleteProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "delete failed"})
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "product not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// createCategoryHandler godoc
// @Summary Create a category
// @Tags admin
// @Accept json
// @Produce json
// @Param payload body catalog.CreateCategoryRequest true "category"
// @Success 201 {object} catalog.Category
// @Failure 400 {object} httpx.HTTPError
// @Failure 409 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/categories [post]
func createCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "name is required"})
			return
		}

		cat := &catalog.Category{ID: uuid.NewString(), Name: req.Name, Description: req.Description}
		if err := repo.CreateCategory(c.Request.Context(), cat); err != nil {
			c.JSON(http.StatusConflict, httpx.HTTPError{Error: "category already exists"})
			return
		}
		created, err := repo.GetCategory(c.Request.Context(), cat.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "refetch failed"})
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// updateCategoryHandler godoc
// @Summary Rename or redescribe a category
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "category id"
// @Param payload body catalog.UpdateCategoryRequest true "fields to change"
// @Success 200 {object} catalog.Category
// @Failure 404 {object} httpx.HTTPError
// @Failure 409 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/categories/{id} [put]
func updateCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, httpx.HTTPError{Error: "invalid payload"})
			return
		}

		id := c.Param("id")
		err := repo.UpdateCategory(c.Request.Context(), &catalog.Category{ID: id, Name: req.Name, Description: req.Description})
		if err != nil {
			if errors.Is(err, catalog.ErrCategoryNotFound) {
				c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "category not found"})
				return
			}
			// UNIQUE(name) is the only other way the update can fail
			c.JSON(http.StatusConflict, httpx.HTTPError{Error: "category name already in use"})
			return
		}
		updated, err := repo.GetCategory(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "refetch failed"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// deleteCategoryHandler godoc
// @Summary Delete an empty category
// @Tags admin
// @Param id path string true "category id"
// @Success 204
// @Failure 404 {object} httpx.HTTPError
// @Failure 409 {object} httpx.HTTPError
// @Security BasicAuth
// @Router /admin/categories/{id} [delete]
func deleteCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := repo.DeleteCategory(c.Request.Context(), c.Param("id"))
		switch {
		case err == nil:
			c.Status(http.StatusNoContent)
		case errors.Is(err, catalog.ErrCategoryInUse):
			c.JSON(http.StatusConflict, httpx.HTTPError{Error: "category still has products"})
		case errors.Is(err, catalog.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "category not found"})
		default:
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "delete failed"})
		}
	}
}
