package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokeshbavandla/shophub-ecommerce-app/middleware"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

type CartController struct {
	carts services.CartService
}

func NewCartController(carts services.CartService) *CartController {
	return &CartController{carts: carts}
}

type cartItemRequest struct {
	ProductID string `json:"productId"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (cc *CartController) GetCartProducts(c *gin.Context) {
	user := middleware.CurrentUser(c)

	products, svcErr := cc.carts.GetCartProducts(c.Request.Context(), user)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (cc *CartController) AddToCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	items, svcErr := cc.carts.AddToCart(c.Request.Context(), user, req.ProductID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, items)
}

// RemoveAllFromCart removes one product when a productId is supplied, or
// clears the whole cart otherwise.
func (cc *CartController) RemoveAllFromCart(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req cartItemRequest
	_ = c.ShouldBindJSON(&req)

	items, svcErr := cc.carts.RemoveFromCart(c.Request.Context(), user, req.ProductID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (cc *CartController) UpdateQuantity(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	items, svcErr := cc.carts.UpdateQuantity(c.Request.Context(), user, c.Param("id"), *req.Quantity)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, items)
}
