package gateway

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/localhands/pkg/catalog"
	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/store"
)

type productRequest struct {
	ShopID      string   `json:"shop_id"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price"`
	Images      []string `json:"images"`
	Category    string   `json:"category" binding:"required"`
	Inventory   *int     `json:"inventory"`
	IsAvailable *bool    `json:"is_available"`
	Tags        []string `json:"tags"`
}

func (r productRequest) input() catalog.ProductInput {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return catalog.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		SalePrice:   r.SalePrice,
		Images:      r.Images,
		Category:    r.Category,
		Inventory:   r.Inventory,
		IsAvailable: available,
		Tags:        r.Tags,
	}
}

func (g *Gateway) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}
	if req.ShopID == "" {
		g.abortWithError(c, fmt.Errorf("shop_id is required: %w", errs.ErrInvalidInput))
		return
	}

	product, err := g.catalog.CreateProduct(c.Request.Context(), currentUser(c), req.ShopID, req.input())
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (g *Gateway) listProducts(c *gin.Context) {
	products, err := g.catalog.ListProducts(c.Request.Context(), store.ProductFilter{
		ShopID:        c.Query("shop_id"),
		Category:      c.Query("category"),
		AvailableOnly: boolQuery(c, "available_only", true),
		Search:        c.Query("search"),
		Skip:          intQuery(c, "skip", 0),
		Limit:         intQuery(c, "limit", 20),
	})
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (g *Gateway) getProduct(c *gin.Context) {
	product, err := g.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	product, err := g.catalog.UpdateProduct(c.Request.Context(), currentUser(c), c.Param("id"), req.input())
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (g *Gateway) deleteProduct(c *gin.Context) {
	if err := g.catalog.DeleteProduct(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		g.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
