package gateway

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/localhands/pkg/errs"
	"github.com/example/localhands/pkg/models"
	"github.com/example/localhands/pkg/orders"
)

type orderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type deliveryInfoRequest struct {
	Method     string `json:"method" binding:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type orderRequest struct {
	ShopID        string              `json:"shop_id" binding:"required"`
	Items         []orderItemRequest  `json:"items" binding:"required"`
	DeliveryInfo  deliveryInfoRequest `json:"delivery_info" binding:"required"`
	PaymentMethod string              `json:"payment_method"`
}

func (g *Gateway) createOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	items := make([]orders.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = orders.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	order, err := g.orders.Create(c.Request.Context(), currentUser(c), orders.OrderInput{
		ShopID: req.ShopID,
		Items:  items,
		Delivery: orders.DeliveryInput{
			Method:     req.DeliveryInfo.Method,
			Address:    req.DeliveryInfo.Address,
			City:       req.DeliveryInfo.City,
			State:      req.DeliveryInfo.State,
			PostalCode: req.DeliveryInfo.PostalCode,
			Country:    req.DeliveryInfo.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (g *Gateway) listOrders(c *gin.Context) {
	list, err := g.orders.List(c.Request.Context(), currentUser(c), orders.ListFilter{
		ShopID: c.Query("shop_id"),
		Status: c.Query("status"),
		Skip:   intQuery(c, "skip", 0),
		Limit:  intQuery(c, "limit", 20),
	})
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	if list == nil {
		list = []*models.Order{}
	}
	c.JSON(http.StatusOK, list)
}

func (g *Gateway) getOrder(c *gin.Context) {
	order, err := g.orders.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (g *Gateway) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		g.abortWithError(c, fmt.Errorf("%s: %w", err.Error(), errs.ErrInvalidInput))
		return
	}

	order, err := g.orders.UpdateStatus(c.Request.Context(), currentUser(c), c.Param("id"), req.Status)
	if err != nil {
		g.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
