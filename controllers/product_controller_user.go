package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/models"
	"storefront/store"
)

type paginationInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int64 `json:"totalPages"`
}

type productListResponse struct {
	Products   []models.Product `json:"products"`
	Pagination paginationInfo   `json:"pagination"`
}

// ListProducts is the public catalog query: category, text search, price
// range, featured flag, sorting and offset pagination. Responses are served
// cache-aside keyed by the raw query string.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cacheKey := "products:list:" + c.Request.URL.RawQuery
	var cached productListResponse
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("catalog cache read failed: %v", err)
	} else if hit {
		c.JSON(http.StatusOK, cached)
		return
	}

	params := store.ListProductsParams{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}

	if raw := c.Query("category"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		params.CategoryID = &id
	}
	if raw := c.Query("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid minPrice"})
			return
		}
		params.MinPrice = &v
	}
	if raw := c.Query("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maxPrice"})
			return
		}
		params.MaxPrice = &v
	}
	if raw := c.Query("featured"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid featured flag"})
			return
		}
		params.Featured = &v
	}

	page, limit := parsePagination(c)
	params.Limit = limit
	params.Offset = (page - 1) * limit

	products, total, err := h.products.List(ctx, params)
	if err != nil {
		h.respondError(c, err)
		return
	}

	totalPages := int64(0)
	if total > 0 {
		totalPages = (total + int64(limit) - 1) / int64(limit)
	}
	response := productListResponse{
		Products: products,
		Pagination: paginationInfo{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages,
		},
	}

	if err := h.cache.Set(ctx, cacheKey, response); err != nil {
		log.Printf("catalog cache write failed: %v", err)
	}
	c.JSON(http.StatusOK, response)
}

// GetProduct returns a single product with its embedded reviews.
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	cacheKey := "products:detail:" + id.Hex()
	var cached models.Product
	if hit, err := h.cache.Get(ctx, cacheKey, &cached); err != nil {
		log.Printf("catalog cache read failed: %v", err)
	} else if hit {
		c.JSON(http.StatusOK, gin.H{"product": cached})
		return
	}

	product, err := h.products.GetByID(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.cache.Set(ctx, cacheKey, product); err != nil {
		log.Printf("catalog cache write failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// AddReview appends a review to a product and refreshes its rating.
func (h *Handler) AddReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	productID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var input struct {
		Rating  float64 `json:"rating" binding:"required,gte=1,lte=5"`
		Comment string  `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.users.GetByID(ctx, userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	product, err := h.products.AddReview(ctx, productID, models.Review{
		UserID:    userID,
		UserName:  user.Name,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.invalidateCatalogCache(ctx)
	c.JSON(http.StatusCreated, gin.H{"message": "Review added", "product": product})
}

func (h *Handler) invalidateCatalogCache(ctx context.Context) {
	if err := h.cache.DeletePattern(ctx, "products:*"); err != nil {
		log.Printf("catalog cache invalidation failed: %v", err)
	}
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = 12
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
