package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokeshbavandla/shophub-ecommerce-app/middleware"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

type PaymentController struct {
	checkout services.CheckoutService
}

func NewPaymentController(checkout services.CheckoutService) *PaymentController {
	return &PaymentController{checkout: checkout}
}

func (pc *PaymentController) CreateCheckoutSession(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req services.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	resp, svcErr := pc.checkout.CreateCheckoutSession(c.Request.Context(), user, &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (pc *PaymentController) CheckoutSuccess(c *gin.Context) {
	var req services.CheckoutSuccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	resp, svcErr := pc.checkout.CheckoutSuccess(c.Request.Context(), req.SessionID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, resp)
}
