package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokeshbavandla/shophub-ecommerce-app/middleware"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

type CouponController struct {
	coupons services.CouponService
}

func NewCouponController(coupons services.CouponService) *CouponController {
	return &CouponController{coupons: coupons}
}

func (cc *CouponController) GetCoupon(c *gin.Context) {
	user := middleware.CurrentUser(c)

	coupon, svcErr := cc.coupons.GetCoupon(c.Request.Context(), user.ID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	// A user without a coupon gets an explicit null body, matching the
	// cached negative result.
	c.JSON(http.StatusOK, coupon)
}

func (cc *CouponController) ValidateCoupon(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req models.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	resp, svcErr := cc.coupons.ValidateCoupon(c.Request.Context(), user.ID, req.Code)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, resp)
}
