package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokeshbavandla/shophub-ecommerce-app/middleware"
	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

type AuthController struct {
	auth       services.AuthService
	production bool
}

func NewAuthController(auth services.AuthService, production bool) *AuthController {
	return &AuthController{auth: auth, production: production}
}

func (ac *AuthController) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, pair, svcErr := ac.auth.Signup(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	ac.setAuthCookies(c, pair)
	c.JSON(http.StatusCreated, gin.H{
		"_id":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, pair, svcErr := ac.auth.Login(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	ac.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"_id":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie("refreshToken")
	if svcErr := ac.auth.Logout(c.Request.Context(), refreshToken); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	ac.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (ac *AuthController) RefreshToken(c *gin.Context) {
	refreshToken, _ := c.Cookie("refreshToken")

	accessToken, svcErr := ac.auth.Refresh(c.Request.Context(), refreshToken)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", accessToken, int(services.AccessTokenTTL.Seconds()), "/", "", ac.production, true)
	c.JSON(http.StatusOK, gin.H{"message": "Token refreshed successfully"})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	profile, svcErr := ac.auth.GetProfile(c.Request.Context(), user)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (ac *AuthController) setAuthCookies(c *gin.Context, pair *services.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", pair.AccessToken, int(services.AccessTokenTTL.Seconds()), "/", "", ac.production, true)
	c.SetCookie("refreshToken", pair.RefreshToken, int(services.RefreshTokenTTL.Seconds()), "/", "", ac.production, true)
}

func (ac *AuthController) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("accessToken", "", -1, "/", "", ac.production, true)
	c.SetCookie("refreshToken", "", -1, "/", "", ac.production, true)
}
