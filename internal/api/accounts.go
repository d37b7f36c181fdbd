package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"time"     // Time durations

	"github.com/obutuz/Miley/internal/domain"     // Importing domain models
	"github.com/obutuz/Miley/internal/middleware" // Current user lookup
	"github.com/obutuz/Miley/internal/session"    // Session manager
	"github.com/obutuz/Miley/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// UserListCacheKey holds the cached JSON user listing
const UserListCacheKey = "accounts:users:json"

// Follow request outcomes
const (
	FollowOK       = "ok"
	FollowNotFound = "not found"
	FollowError    = "error"
)

// SignupForm is the account creation form
type SignupForm struct {
	Username    string `form:"username" binding:"required,max=150"`                // Username must be provided
	Email       string `form:"email" binding:"required,email,max=254"`             // Valid email address
	Password    string `form:"password" binding:"required,min=8"`                  // At least 8 characters
	ProfileType string `form:"profile_type" binding:"required,oneof=buyer seller"` // Profile type
}

// LoginForm is the login form
type LoginForm struct {
	Username string `form:"username" binding:"required"` // Username must be provided
	Password string `form:"password" binding:"required"` // Password must be provided
}

// FollowRequest is the JSON body of the follow toggle
type FollowRequest struct {
	ID     uint   `json:"id"`     // Target user id
	Action string `json:"action"` // follow or unfollow
}

// UserSummary is one entry of the JSON user listing
type UserSummary struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Picture     string     `json:"picture"`
	Type        string     `json:"type"`
	Birth       *string    `json:"birth"`
	LastLogin   *time.Time `json:"last_login"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"is_superuser"`
	DateJoined  time.Time  `json:"date_joined"`
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// isValidUsername allows letters, digits and @.+-_ only
func isValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// UserSignupHandler shows and processes the signup form
func UserSignupHandler(db *gorm.DB, rdb *redis.Client, loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			render(c, http.StatusOK, "accounts/signup.html", gin.H{"form": SignupForm{ProfileType: domain.ProfileBuyer}})
			return
		}
		var form SignupForm // Bind form to struct
		if err := c.ShouldBind(&form); err != nil {
			logrus.WithField("error", err.Error()).Error("Invalid form") // Log validation failure
			render(c, http.StatusBadRequest, "accounts/signup.html", gin.H{"form": form, "errors": formErrors(err)})
			return
		}
		// Validate username characters
		if !isValidUsername(form.Username) {
			logrus.WithField("username", form.Username).Error("Invalid form")
			render(c, http.StatusBadRequest, "accounts/signup.html", gin.H{
				"form":   form,
				"errors": []string{"Username: letters, digits and @/./+/-/_ only."},
			})
			return
		}
		user := domain.User{Username: form.Username, Email: form.Email, IsActive: true}
		// Hash the password
		if err := user.SetPassword(form.Password); err != nil {
			logrus.WithField("error", err.Error()).Error("Error signing up")
			c.String(http.StatusInternalServerError, "Error signing up")
			return
		}
		// Create user and profile atomically
		err := db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit("Profile").Create(&user).Error; err != nil {
				return err // Duplicate username or DB failure
			}
			user.Profile = domain.Profile{UserID: user.ID, ProfileType: form.ProfileType}
			return tx.Create(&user.Profile).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"username": form.Username, // Requested username
				"error":    err.Error(),   // Error message
			}).Error("Error signing up")
			c.String(http.StatusBadRequest, "Error signing up")
			return
		}
		logrus.WithFields(logrus.Fields{
			"profile_id": user.Profile.ID, // New profile
			"email":      user.Email,      // Email address
		}).Info("New user profile was signed up successfully")
		// Invalidate cached user listings
		ctx := context.Background()
		_ = utils.DeleteCache(ctx, rdb, UserListCacheKey)
		_ = utils.DeleteCachePrefix(ctx, rdb, adminUsersCachePrefix)
		c.Redirect(http.StatusFound, loginURL)
	}
}

// UserLoginHandler shows the login form and authenticates the visitor
func UserLoginHandler(db *gorm.DB, sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			render(c, http.StatusOK, "accounts/login.html", gin.H{"form": LoginForm{}})
			return
		}
		var form LoginForm // Bind form to struct
		if err := c.ShouldBind(&form); err != nil {
			render(c, http.StatusBadRequest, "accounts/login.html", gin.H{"form": form, "errors": formErrors(err)})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.WithContext(c.Request.Context()).Where("username = ?", form.Username).First(&user).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logrus.WithField("error", err.Error()).Error("Login lookup failed")
			}
			c.String(http.StatusUnauthorized, "Invalid login")
			return
		}
		// Compare provided password with stored hash
		if !user.CheckPassword(form.Password) {
			logrus.WithField("username", form.Username).Warn("Invalid login")
			c.String(http.StatusUnauthorized, "Invalid login")
			return
		}
		// Disabled accounts may not log in
		if !user.IsActive {
			c.String(http.StatusForbidden, "Disabled account")
			return
		}
		sess := sessions.Cycle(c) // New session id on privilege change
		if err := sess.SetUserID(user.ID); err != nil {
			serverError(c, err, "Failed to store login")
			return
		}
		now := time.Now()
		if err := db.WithContext(c.Request.Context()).Model(&user).Update("last_login", &now).Error; err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to update last login")
		}
		logrus.WithField("user_id", user.ID).Info("User logged in")
		c.String(http.StatusOK, "Authenticated successfully")
	}
}

// UserLogoutHandler ends the session and returns to the login page
func UserLogoutHandler(sessions *session.Manager, loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.Flush(c)
		c.Redirect(http.StatusFound, loginURL+"?next="+c.Request.URL.Path)
	}
}

// HomeFeedHandler renders the dashboard of the logged in user
func HomeFeedHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.UserFromContext(c) // Guaranteed by LoginRequired
		ctx := c.Request.Context()
		var videos []domain.Video
		if err := db.WithContext(ctx).Order("created desc").Find(&videos).Error; err != nil {
			serverError(c, err, "Failed to load videos")
			return
		}
		var people []domain.User // Everyone but the viewer
		if err := db.WithContext(ctx).Preload("Profile").Where("id <> ? AND is_active = ?", user.ID, true).Order("username").Find(&people).Error; err != nil {
			serverError(c, err, "Failed to load profiles")
			return
		}
		var followingIDs []uint
		if err := db.WithContext(ctx).Model(&domain.Contact{}).Where("user_from_id = ?", user.ID).Pluck("user_to_id", &followingIDs).Error; err != nil {
			serverError(c, err, "Failed to load contacts")
			return
		}
		query := db.WithContext(ctx).Preload("User").Where("user_id <> ?", user.ID)
		// Restrict to followed users when the viewer follows anyone
		if len(followingIDs) > 0 {
			query = query.Where("user_id IN ?", followingIDs)
		}
		var activities []domain.Activity
		if err := query.Order("created desc, id desc").Limit(10).Find(&activities).Error; err != nil {
			serverError(c, err, "Failed to load activities")
			return
		}
		if err := resolveTargets(ctx, db, activities); err != nil {
			serverError(c, err, "Failed to load activity targets")
			return
		}
		render(c, http.StatusOK, "accounts/home_feed.html", gin.H{
			"section":    "dashboard",
			"activities": activities,
			"videos":     videos,
			"profiles":   people,
		})
	}
}

// UserListHandler renders the active users other than the viewer
func UserListHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := middleware.UserFromContext(c)
		var users []domain.User
		if err := db.WithContext(c.Request.Context()).Preload("Profile").
			Where("is_active = ? AND id <> ?", true, user.ID).
			Order("username").Find(&users).Error; err != nil {
			serverError(c, err, "Failed to list users")
			return
		}
		render(c, http.StatusOK, "users/list.html", gin.H{"section": "people", "users": users})
	}
}

// UserListJSONHandler returns every user as JSON, cached for a minute
func UserListJSONHandler(db *gorm.DB, rdb *redis.Client, mediaURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		var cached []UserSummary
		// If cached data found, return it
		if found, err := utils.GetCache(ctx, rdb, UserListCacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, gin.H{"users": cached})
			return
		}
		var users []domain.User
		if err := db.WithContext(c.Request.Context()).Preload("Profile").Order("id").Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		data := make([]UserSummary, 0, len(users))
		for _, u := range users {
			data = append(data, summarize(u, mediaURL))
		}
		_ = utils.SetCache(ctx, rdb, UserListCacheKey, data, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"users": data})
	}
}

func summarize(u domain.User, mediaURL string) UserSummary {
	s := UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Picture:     u.Profile.PictureURL(mediaURL),
		Type:        u.Profile.ProfileType,
		LastLogin:   u.LastLogin,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined,
	}
	if u.Profile.BirthDate != nil {
		birth := u.Profile.BirthDate.Format("2006-01-02")
		s.Birth = &birth
	}
	return s
}

// UserDetailHandler renders a user page with the user's products
func UserDetailHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.UserFromContext(c)
		ctx := c.Request.Context()
		var user domain.User
		if err := db.WithContext(ctx).Preload("Profile").Where("username = ? AND is_active = ?", c.Param("username"), true).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				notFound(c, "No such user.")
				return
			}
			serverError(c, err, "Failed to load user")
			return
		}
		var products []domain.Product
		if err := db.WithContext(ctx).Where("user_id = ?", user.ID).Order("name").Find(&products).Error; err != nil {
			serverError(c, err, "Failed to load products")
			return
		}
		var followers, following int64
		if err := db.WithContext(ctx).Model(&domain.Contact{}).Where("user_to_id = ?", user.ID).Count(&followers).Error; err != nil {
			serverError(c, err, "Failed to count followers")
			return
		}
		if err := db.WithContext(ctx).Model(&domain.Contact{}).Where("user_from_id = ? AND user_to_id = ?", viewer.ID, user.ID).Count(&following).Error; err != nil {
			serverError(c, err, "Failed to load contact")
			return
		}
		render(c, http.StatusOK, "users/detail.html", gin.H{
			"section":      "people",
			"user":         user,
			"products":     products,
			"followers":    followers,
			"is_following": following > 0,
		})
	}
}

// UserFollowHandler follows or unfollows a user; the JSON status carries the outcome
func UserFollowHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.UserFromContext(c)
		var req FollowRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 || req.Action == "" {
			c.JSON(http.StatusOK, gin.H{"status": FollowError})
			return
		}
		// Following yourself is not allowed
		if req.ID == viewer.ID {
			c.JSON(http.StatusOK, gin.H{"status": FollowError})
			return
		}
		ctx := c.Request.Context()
		var target domain.User
		if err := db.WithContext(ctx).First(&target, req.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusOK, gin.H{"status": FollowNotFound})
				return
			}
			logrus.WithField("error", err.Error()).Error("Follow lookup failed")
			c.JSON(http.StatusOK, gin.H{"status": FollowError})
			return
		}
		if req.Action == "follow" {
			contact := domain.Contact{UserFromID: viewer.ID, UserToID: target.ID}
			// Get or create keeps a single edge
			if err := db.WithContext(ctx).Where(&contact).FirstOrCreate(&contact).Error; err != nil {
				logrus.WithField("error", err.Error()).Error("Follow failed")
				c.JSON(http.StatusOK, gin.H{"status": FollowError})
				return
			}
			created, err := createActivity(ctx, db, viewer.ID, "is following", domain.TargetUser, &target.ID)
			if err != nil {
				logrus.WithField("error", err.Error()).Warn("Failed to record activity")
			} else if created {
				_ = utils.DeleteCachePrefix(context.Background(), rdb, adminActivitiesCachePrefix)
			}
		} else {
			// Deleting a missing edge is a no-op
			if err := db.WithContext(ctx).Where("user_from_id = ? AND user_to_id = ?", viewer.ID, target.ID).Delete(&domain.Contact{}).Error; err != nil {
				logrus.WithField("error", err.Error()).Error("Unfollow failed")
				c.JSON(http.StatusOK, gin.H{"status": FollowError})
				return
			}
		}
		logrus.WithFields(logrus.Fields{
			"user_id":   viewer.ID, // Acting user
			"target_id": target.ID, // Target user
			"action":    req.Action,
		}).Info("Follow toggled")
		c.JSON(http.StatusOK, gin.H{"status": FollowOK})
	}
}

// AccountSettingsHandler renders the settings page
func AccountSettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "accounts/settings.html", gin.H{"section": "settings"})
	}
}
