package gateway

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/localhands/pkg/catalog"
	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
)

type shopRequest struct {
	Name             string                  `json:"name" binding:"required"`
	Slug             string                  `json:"slug"`
	Description      string                  `json:"description"`
	Logo             string                  `json:"logo"`
	Banner           string                  `json:"banner"`
	DeliverySettings models.DeliverySettings `json:"delivery_settings"`
	ContactEmail     string                  `json:"contact_email"`
	ContactPhone     string                  `json:"contact_phone"`
	Address          string                  `json:"address"`
	City             string                  `json:"city"`
	State            string                  `json:"state"`
	PostalCode       string                  `json:"postal_code"`
	Country          string                  `json:"country"`
	Location         *models.GeoPoint        `json:"location"`
}

func (r shopRequest) input() catalog.ShopInput {
	return catalog.ShopInput{
		Name:             r.Name,
		Slug:             r.Slug,
		Description:      r.Description,
		Logo:             r.Logo,
		Banner:           r.Banner,
		DeliverySettings: r.DeliverySettings,
		ContactEmail:     r.ContactEmail,
		ContactPhone:     r.ContactPhone,
		Address:          r.Address,
		City:             r.City,
		State:            r.State,
		PostalCode:       r.PostalCode,
		Country:          r.Country,
		Location:         r.Location,
	}
}

func (g *Gateway) createShop(c *gin.Context) {
	var req shopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	shop, err := g.catalog.CreateShop(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

func (g *Gateway) listShops(c *gin.Context) {
	shops, err := g.catalog.ListShops(c.Request.Context(), catalog.ShopListFilter{
		ActiveOnly: boolQuery(c, "active_only", true),
		Category:   c.Query("category"),
		Skip:       intQuery(c, "skip", 0),
		Limit:      intQuery(c, "limit", 20),
	})
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	if shops == nil {
		shops = []*models.Shop{}
	}
	c.JSON(http.StatusOK, shops)
}

func (g *Gateway) getShopBySlug(c *gin.Context) {
	shop, err := g.catalog.GetShopBySlug(c.Request.Context(), c.Param("id"))
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (g *Gateway) updateShop(c *gin.Context) {
	var req shopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	shop, err := g.catalog.UpdateShop(c.Request.Context(), currentUser(c), c.Param("id"), req.input())
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (g *Gateway) deleteShop(c *gin.Context) {
	if err := g.catalog.DeleteShop(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		g.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addAdminRequest struct {
	AdminEmail string `json:"admin_email" binding:"required"`
}

func (g *Gateway) addShopAdmin(c *gin.Context) {
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	shop, err := g.catalog.AddAdmin(c.Request.Context(), currentUser(c), c.Param("id"), req.AdminEmail)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (g *Gateway) removeShopAdmin(c *gin.Context) {
	shop, err := g.catalog.RemoveAdmin(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

func (g *Gateway) listCategories(c *gin.Context) {
	cats, err := g.catalog.Categories(c.Request.Context())
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, cats)
}
