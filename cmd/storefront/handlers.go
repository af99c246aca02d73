package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/retailcore/storefront/internal/catalog"
	"github.com/retailcore/storefront/internal/database"
	"github.com/retailcore/storefront/internal/httpx"
)

// healthzHandler godoc
// @Summary Liveness and database check
// @Tags health
// @Produce plain
// @Success 200 {string} string "ok"
// @Failure 503 {object} httpx.HTTPError
// @Router /healthz [get]
func healthzHandler(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpx.HTTPError{Error: "database unreachable"})
			return
		}
		c.String(http.StatusOK, "ok")
	}
}

// featuredHandler godoc
// @Summary Home page payload: categories plus newest in-stock products
// @Tags catalog
// @Produce json
// @Success 200 {object} catalog.FeaturedResponse
// @Router /featured [get]
func featuredHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		cats, err := repo.ListCategories(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "catalog unavailable"})
			return
		}
		prods, err := repo.FeaturedProducts(ctx, 8)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, catalog.FeaturedResponse{Categories: cats, Products: prods})
	}
}

func listQuery(c *gin.Context) catalog.Query {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return catalog.Query{
		Q:          c.Query("q"),
		CategoryID: c.Query("category_id"),
		Sort:       c.Query("sort"),
		Limit:      limit,
		Offset:     offset,
	}
}

func listProducts(repo catalog.Repository, includeInactive bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := listQuery(c)
		q.IncludeInactive = includeInactive

		items, total, err := repo.ListProducts(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, catalog.ListResponse{
			Q:          q.Q,
			CategoryID: q.CategoryID,
			Sort:       q.Sort,
			Limit:      q.Limit,
			Offset:     q.Offset,
			Total:      total,
			Items:      items,
		})
	}
}

// listProductsHandler godoc
// @Summary List active products with search, filter, sort and pagination
// @Tags catalog
// @Produce json
// @Param q query string false "search in name and description"
// @Param category_id query string false "filter by category"
// @Param sort query string false "name|-name|price|-price|created_at|-created_at"
// @Param limit query int false "page size (max 100)"
// @Param offset query int false "page offset"
// @Success 200 {object} catalog.ListResponse
// @Router /products [get]
func listProductsHandler(repo catalog.Repository) gin.HandlerFunc {
	return listProducts(repo, false)
}

// getProductHandler godoc
// @Summary Product detail
// @Tags catalog
// @Produce json
// @Param id path string true "product id"
// @Success 200 {object} catalog.Product
// @Failure 404 {object} httpx.HTTPError
// @Router /products/{id} [get]
func getProductHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil || !p.Active {
			c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// listCategoriesHandler godoc
// @Summary List categories with their active product counts
// @Tags catalog
// @Produce json
// @Success 200 {array} catalog.Category
// @Router /categories [get]
func listCategoriesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := repo.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpx.HTTPError{Error: "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, cats)
	}
}

// getCategoryHandler godoc
// @Summary Category detail
// @Tags catalog
// @Produce json
// @Param id path string true "category id"
// @Success 200 {object} catalog.Category
// @Failure 404 {object} httpx.HTTPError
// @Router /categories/{id} [get]
func getCategoryHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := repo.GetCategory(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, httpx.HTTPError{Error: "category not found"})
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}
