package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lokeshbavandla/shophub-ecommerce-app/models"
	"github.com/lokeshbavandla/shophub-ecommerce-app/services"
)

type ProductController struct {
	products services.ProductService
}

func NewProductController(products services.ProductService) *ProductController {
	return &ProductController{products: products}
}

func (pc *ProductController) GetAllProducts(c *gin.Context) {
	products, svcErr := pc.products.GetAllProducts(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (pc *ProductController) GetFeaturedProducts(c *gin.Context) {
	products, svcErr := pc.products.GetFeaturedProducts(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetRecommendedProducts(c *gin.Context) {
	products, svcErr := pc.products.GetRecommendedProducts(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (pc *ProductController) GetProductsByCategory(c *gin.Context) {
	products, svcErr := pc.products.GetProductsByCategory(c.Request.Context(), c.Param("category"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	product, svcErr := pc.products.CreateProduct(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	product, svcErr := pc.products.UpdateProduct(c.Request.Context(), c.Param("id"), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (pc *ProductController) DeleteProduct(c *gin.Context) {
	if svcErr := pc.products.DeleteProduct(c.Request.Context(), c.Param("id")); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (pc *ProductController) ToggleFeaturedProduct(c *gin.Context) {
	isFeatured, svcErr := pc.products.ToggleFeatured(c.Request.Context(), c.Param("id"))
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"message": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isFeatured": isFeatured})
}
