package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"github.com/obutuz/Miley/internal/cart"    // Session cart
	"github.com/obutuz/Miley/internal/domain"  // Importing domain models
	"github.com/obutuz/Miley/internal/session" // Session access

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CartDetailPath is where cart changes redirect to
const CartDetailPath = "/shop/cart/"

// CartAddProductForm adds or updates a cart line
type CartAddProductForm struct {
	Quantity int  `form:"quantity" binding:"min=0,max=20"` // Units to add or set
	Update   bool `form:"update"`                          // Replace instead of increment
}

// cartLineView is a cart line with its prefilled update form
type cartLineView struct {
	cart.Line
	UpdateForm CartAddProductForm
}

// ProductListHandler renders available products, optionally within a category
func ProductListHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var categories []domain.Category
		if err := db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
			serverError(c, err, "Failed to load categories")
			return
		}
		query := db.WithContext(ctx).Where("available = ?", true)
		var category *domain.Category
		if categorySlug := c.Param("slug"); categorySlug != "" {
			category = &domain.Category{}
			if err := db.WithContext(ctx).Where("slug = ?", categorySlug).First(category).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					notFound(c, "No such category.")
					return
				}
				serverError(c, err, "Failed to load category")
				return
			}
			query = query.Where("category_id = ?", category.ID) // Filter by category
		}
		var products []domain.Product
		if err := query.Order("name").Find(&products).Error; err != nil {
			serverError(c, err, "Failed to load products")
			return
		}
		render(c, http.StatusOK, "shop/product/list.html", gin.H{
			"category":   category,
			"categories": categories,
			"products":   products,
		})
	}
}

// ProductDetailHandler renders an available product with the add-to-cart form
func ProductDetailHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			notFound(c, "No such product.")
			return
		}
		var product domain.Product
		err := db.WithContext(c.Request.Context()).Preload("Category").
			Where("id = ? AND slug = ? AND available = ?", id, c.Param("slug"), true).
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				notFound(c, "No such product.")
				return
			}
			serverError(c, err, "Failed to load product")
			return
		}
		render(c, http.StatusOK, "shop/product/detail.html", gin.H{
			"product":           product,
			"cart_product_form": CartAddProductForm{Quantity: 1},
			"max_quantity":      cart.MaxQuantity,
		})
	}
}

// loadProduct fetches the product named by the id path parameter, rendering 404 when missing
func loadProduct(c *gin.Context, db *gorm.DB) (*domain.Product, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		notFound(c, "No such product.")
		return nil, false
	}
	var product domain.Product
	if err := db.WithContext(c.Request.Context()).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFound(c, "No such product.")
			return nil, false
		}
		serverError(c, err, "Failed to load product")
		return nil, false
	}
	return &product, true
}

// CartAddHandler adds a product to the session cart
func CartAddHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := loadProduct(c, db)
		if !ok {
			return
		}
		var form CartAddProductForm // Bind form to struct
		if err := c.ShouldBind(&form); err != nil {
			logrus.WithField("error", err.Error()).Warn("Invalid cart form")
			c.Redirect(http.StatusFound, CartDetailPath)
			return
		}
		sc, err := cart.Load(session.FromContext(c))
		if err != nil {
			serverError(c, err, "Failed to load cart")
			return
		}
		if err := sc.Add(*product, form.Quantity, form.Update); err != nil {
			serverError(c, err, "Failed to update cart")
			return
		}
		c.Redirect(http.StatusFound, CartDetailPath)
	}
}

// CartRemoveHandler drops a product from the session cart
func CartRemoveHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, ok := loadProduct(c, db)
		if !ok {
			return
		}
		sc, err := cart.Load(session.FromContext(c))
		if err != nil {
			serverError(c, err, "Failed to load cart")
			return
		}
		if err := sc.Remove(product.ID); err != nil {
			serverError(c, err, "Failed to update cart")
			return
		}
		c.Redirect(http.StatusFound, CartDetailPath)
	}
}

// CartDetailHandler renders the cart contents
func CartDetailHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc, err := cart.Load(session.FromContext(c))
		if err != nil {
			serverError(c, err, "Failed to load cart")
			return
		}
		lines, err := sc.Lines(c.Request.Context(), db)
		if err != nil {
			serverError(c, err, "Failed to load cart products")
			return
		}
		views := make([]cartLineView, 0, len(lines))
		for _, line := range lines {
			views = append(views, cartLineView{
				Line:       line,
				UpdateForm: CartAddProductForm{Quantity: line.Quantity, Update: true}, // Update replaces the quantity
			})
		}
		render(c, http.StatusOK, "shop/cart/detail.html", gin.H{
			"lines":        views,
			"total":        sc.TotalPrice(),
			"cart_len":     sc.Len(),
			"max_quantity": cart.MaxQuantity,
		})
	}
}
