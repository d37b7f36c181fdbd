// Package routes wires handlers and middleware onto the gin engine.
package routes

import (
	"github.com/obutuz/Miley/internal/api"        // HTTP handlers
	"github.com/obutuz/Miley/internal/config"     // Application configuration
	"github.com/obutuz/Miley/internal/mail"       // Outgoing mail
	"github.com/obutuz/Miley/internal/middleware" // Auth and CSRF middleware
	"github.com/obutuz/Miley/internal/session"    // Session middleware
	"github.com/obutuz/Miley/internal/templates"  // Embedded HTML templates

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// Deps are the shared services handlers are built from
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Sessions *session.Manager
	Mailer   mail.Mailer
	Config   *config.Config
}

// Setup registers every route of the site on r
func Setup(r *gin.Engine, d Deps) {
	cfg := d.Config
	r.SetHTMLTemplate(templates.MustLoad())

	// Health check stays outside sessions and CSRF
	r.GET("/health", api.HealthHandler())

	site := r.Group("")
	site.Use(
		d.Sessions.Middleware(),
		middleware.CurrentUser(d.DB),
		middleware.CSRF(middleware.CSRFConfig{AllowedOrigins: cfg.AllowedOrigins}),
	)
	loginRequired := middleware.LoginRequired(cfg.LoginURL)

	// Account routes
	account := site.Group("/account")
	account.GET("/signup/", api.UserSignupHandler(d.DB, d.Redis, cfg.LoginURL))  // Signup form
	account.POST("/signup/", api.UserSignupHandler(d.DB, d.Redis, cfg.LoginURL)) // Signup submit
	account.GET("/login/", api.UserLoginHandler(d.DB, d.Sessions))               // Login form
	account.POST("/login/", api.UserLoginHandler(d.DB, d.Sessions))              // Login submit
	account.GET("/logout/", api.UserLogoutHandler(d.Sessions, cfg.LoginURL))     // Logout link
	account.POST("/logout/", api.UserLogoutHandler(d.Sessions, cfg.LoginURL))    // Logout form
	account.GET("/", loginRequired, api.HomeFeedHandler(d.DB))                   // Home feed
	account.GET("/settings/", loginRequired, api.AccountSettingsHandler())       // Settings page

	// User directory routes
	users := site.Group("/users")
	users.GET("/json/", api.UserListJSONHandler(d.DB, d.Redis, cfg.MediaURL))   // Cached JSON listing
	users.POST("/follow/", loginRequired, api.UserFollowHandler(d.DB, d.Redis)) // Follow/unfollow
	users.GET("/", loginRequired, api.UserListHandler(d.DB))                    // User list
	users.GET("/:username/", loginRequired, api.UserDetailHandler(d.DB))        // User detail

	// Blog routes
	blog := site.Group("/blog")
	blog.GET("/", api.PostListHandler(d.DB))                                                  // Post list
	blog.GET("/share/:id/", api.PostShareHandler(d.DB, d.Mailer, cfg.MailFrom, cfg.SiteURL))  // Share form
	blog.POST("/share/:id/", api.PostShareHandler(d.DB, d.Mailer, cfg.MailFrom, cfg.SiteURL)) // Share submit
	blog.GET("/:year/:month/:day/:slug/", api.PostDetailHandler(d.DB))                        // Post detail

	// Shop routes
	shop := site.Group("/shop")
	shop.GET("/", api.ProductListHandler(d.DB))                     // All products
	shop.GET("/category/:slug/", api.ProductListHandler(d.DB))      // Products of a category
	shop.GET("/product/:id/:slug/", api.ProductDetailHandler(d.DB)) // Product detail
	shop.GET("/cart/", api.CartDetailHandler(d.DB))                 // Cart contents
	shop.POST("/cart/add/:id/", api.CartAddHandler(d.DB))           // Add to cart
	shop.POST("/cart/remove/:id/", api.CartRemoveHandler(d.DB))     // Remove from cart

	// Admin routes (superusers only)
	admin := site.Group("/admin")
	admin.Use(middleware.SuperuserOnly())
	admin.GET("/users", api.ListUsersHandler(d.DB, d.Redis))           // List users
	admin.GET("/activities", api.ListActivitiesHandler(d.DB, d.Redis)) // List activities
	admin.POST("/posts", api.CreatePostHandler(d.DB))                  // Create post
	admin.POST("/categories", api.CreateCategoryHandler(d.DB))         // Create category
	admin.POST("/products", api.CreateProductHandler(d.DB))            // Create product
	admin.POST("/videos", api.CreateVideoHandler(d.DB))                // Create video

	r.NoRoute(d.Sessions.Middleware(), middleware.CurrentUser(d.DB), api.NotFoundHandler())
}
