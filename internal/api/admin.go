package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"github.com/obutuz/Miley/internal/domain"     // Importing domain models
	"github.com/obutuz/Miley/internal/middleware" // Current user lookup
	"github.com/obutuz/Miley/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Cache key prefixes of the admin listings
const (
	adminUsersCachePrefix      = "admin:users:"
	adminActivitiesCachePrefix = "admin:activities:"
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID          uint           `json:"id"`           // User ID
	Username    string         `json:"username"`     // Username
	Email       string         `json:"email"`        // Email address
	IsActive    bool           `json:"is_active"`    // Active flag
	IsSuperuser bool           `json:"is_superuser"` // Superuser flag
	DateJoined  time.Time      `json:"date_joined"`  // Signup time
	Profile     domain.Profile `json:"profile"`      // Associated profile
}

// ActivityAdminResponse represents an activity returned to admin
type ActivityAdminResponse struct {
	ID         uint      `json:"id"`          // Activity ID
	UserID     uint      `json:"user_id"`     // Acting user
	Verb       string    `json:"verb"`        // What happened
	TargetType string    `json:"target_type"` // Target kind
	TargetID   *uint     `json:"target_id"`   // Target row
	Created    time.Time `json:"created"`     // When it happened
}

// pageParams reads page and page_size from the query string
func pageParams(c *gin.Context) (string, int) {
	pageSize := 20 // Default page size
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		// If valid, set page size
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size
		}
	}
	return c.DefaultQuery("page", "1"), pageSize
}

// ListUsersHandler returns all users with their profile
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		rawPage, pageSize := pageParams(c)
		// Create a cache key based on pagination parameters
		cacheKey := adminUsersCachePrefix + "page=" + rawPage + ":size=" + strconv.Itoa(pageSize)
		// Try to get cached response
		var cached struct {
			Users []UserAdminResponse `json:"users"` // List of users
			utils.Page
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,    // List of users
				"page":        cached.Number,   // Current page
				"page_size":   cached.PerPage,  // Page size
				"total":       cached.Count,    // Total number of users
				"total_pages": cached.NumPages, // Total pages
				"cached":      true,            // Indicate response is from cache
			})
			return
		}
		var total int64 // Total user count
		// Fetch total user count
		if err := db.WithContext(c.Request.Context()).Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		page := utils.Paginator{Count: total, PerPage: pageSize}.Page(rawPage) // Clamp page into range
		var users []domain.User
		// Preload Profile relation, apply offset and limit for pagination
		if err := db.WithContext(c.Request.Context()).Preload("Profile").Order("id").Offset(page.Offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// Map users to response format
		resp := make([]UserAdminResponse, len(users))
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:          u.ID,          // User ID
				Username:    u.Username,    // Username
				Email:       u.Email,       // Email
				IsActive:    u.IsActive,    // Active flag
				IsSuperuser: u.IsSuperuser, // Superuser flag
				DateJoined:  u.DateJoined,  // Signup time
				Profile:     u.Profile,     // Associated profile
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,          // List of users
			"page":        page.Number,   // Current page
			"page_size":   page.PerPage,  // Page size
			"total":       total,         // Total number of users
			"total_pages": page.NumPages, // Total pages
			"cached":      false,         // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListActivitiesHandler returns activities, with optional filtering by user, verb, or date
func ListActivitiesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		for _, k := range []string{"user_id", "verb", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		cacheKey := adminActivitiesCachePrefix + strings.Join(keyParts, ":")
		var cached struct {
			Activities []ActivityAdminResponse `json:"activities"` // List of activities
			utils.Page
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"activities":  cached.Activities, // List of activities
				"page":        cached.Number,     // Current page
				"page_size":   cached.PerPage,    // Page size
				"total":       cached.Count,      // Total number of activities
				"total_pages": cached.NumPages,   // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		rawPage, pageSize := pageParams(c)
		query := db.WithContext(c.Request.Context()).Model(&domain.Activity{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID) // Filter by user ID
		}
		if verb := c.Query("verb"); verb != "" {
			query = query.Where("verb = ?", verb) // Filter by verb
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created >= ?", from) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created <= ?", to) // Filter by end date
		}
		var total int64 // Total activity count
		// Get total count of activities matching the filters
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count activities"})
			return
		}
		page := utils.Paginator{Count: total, PerPage: pageSize}.Page(rawPage)
		var activities []domain.Activity // Slice to hold activities
		// Fetch paginated activities with filters applied
		if err := query.Order("created desc, id desc").Offset(page.Offset).Limit(pageSize).Find(&activities).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activities"})
			return
		}
		resp := make([]ActivityAdminResponse, len(activities))
		for i, a := range activities {
			resp[i] = ActivityAdminResponse{
				ID:         a.ID,
				UserID:     a.UserID,
				Verb:       a.Verb,
				TargetType: a.TargetType,
				TargetID:   a.TargetID,
				Created:    a.Created,
			}
		}
		respData := gin.H{
			"activities":  resp,          // List of activities
			"page":        page.Number,   // Current page
			"page_size":   page.PerPage,  // Page size
			"total":       total,         // Total number of activities
			"total_pages": page.NumPages, // Total pages
			"cached":      false,         // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// CreatePostRequest represents a new blog post
type CreatePostRequest struct {
	Title   string     `json:"title" binding:"required,max=250"`                 // Post title
	Slug    string     `json:"slug" binding:"omitempty,max=250"`                 // Optional slug, derived from title
	Body    string     `json:"body"`                                             // Post body
	Status  string     `json:"status" binding:"omitempty,oneof=draft published"` // draft or published
	Publish *time.Time `json:"publish"`                                          // Optional publication time
}

// CreatePostHandler creates a blog post authored by the calling superuser
func CreatePostHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		author, _ := middleware.UserFromContext(c) // Guaranteed by SuperuserOnly
		var req CreatePostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		post := domain.Post{Title: req.Title, Slug: req.Slug, Body: req.Body, Status: req.Status, AuthorID: author.ID}
		if req.Publish != nil {
			post.Publish = *req.Publish
		}
		// Save the new post
		if err := db.WithContext(c.Request.Context()).Create(&post).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"author_id": author.ID,   // Author
				"error":     err.Error(), // Error message
			}).Error("Failed to create post")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"post_id": post.ID,     // New post
			"slug":    post.Slug,   // Slug
			"status":  post.Status, // Status
		}).Info("Post created")
		c.JSON(http.StatusCreated, gin.H{"message": "Post created", "post": post, "url": post.AbsoluteURL()})
	}
}

// CreateCategoryRequest represents a new shop category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=200"`  // Category name
	Slug string `json:"slug" binding:"omitempty,max=200"` // Optional slug, derived from name
}

// CreateCategoryHandler creates a shop category
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateCategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		category := domain.Category{Name: req.Name, Slug: req.Slug}
		// Slugs are unique, a failed insert means a duplicate
		if err := db.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category already exists"})
			return
		}
		logrus.WithField("category_id", category.ID).Info("Category created")
		c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
	}
}

// CreateProductRequest represents a new product
type CreateProductRequest struct {
	CategoryID  uint    `json:"category_id" binding:"required"`   // Category
	UserID      *uint   `json:"user_id"`                          // Optional seller
	Name        string  `json:"name" binding:"required,max=200"`  // Product name
	Slug        string  `json:"slug" binding:"omitempty,max=200"` // Optional slug
	Image       string  `json:"image"`                            // Image path
	Description string  `json:"description"`                      // Description
	Price       float64 `json:"price" binding:"gte=0"`            // Unit price
	Available   *bool   `json:"available"`                        // Defaults to true
}

// CreateProductHandler creates a product in an existing category
func CreateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		var category domain.Category
		if err := db.WithContext(ctx).First(&category, req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load category"})
			return
		}
		if req.UserID != nil {
			var seller domain.User
			if err := db.WithContext(ctx).First(&seller, *req.UserID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Seller not found"})
				return
			}
		}
		available := true
		if req.Available != nil {
			available = *req.Available
		}
		product := domain.Product{
			CategoryID:  category.ID,
			UserID:      req.UserID,
			Name:        req.Name,
			Slug:        req.Slug,
			Image:       req.Image,
			Description: req.Description,
			Price:       req.Price,
			Available:   available,
		}
		if err := db.WithContext(ctx).Create(&product).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to create product")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"product_id":  product.ID,  // New product
			"category_id": category.ID, // Category
		}).Info("Product created")
		c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product, "url": product.AbsoluteURL()})
	}
}

// CreateVideoRequest represents a new feed video
type CreateVideoRequest struct {
	Title string `json:"title" binding:"required,max=200"` // Video title
	URL   string `json:"url" binding:"required,url"`       // Source URL
}

// CreateVideoHandler adds a video to the home feed
func CreateVideoHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, _ := middleware.UserFromContext(c)
		var req CreateVideoRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		video := domain.Video{UserID: owner.ID, Title: req.Title, URL: req.URL}
		if err := db.WithContext(c.Request.Context()).Create(&video).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to create video")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create video"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Video created", "video": video})
	}
}
