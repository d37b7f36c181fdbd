package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strconv"  // Date parameter parsing
	"time"     // Day ranges

	"github.com/obutuz/Miley/internal/domain" // Importing domain models
	"github.com/obutuz/Miley/internal/mail"   // Outgoing mail
	"github.com/obutuz/Miley/internal/utils"  // Pagination

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// PostsPerPage is the blog listing page size
const PostsPerPage = 12

// EmailPostForm is the share-by-email form
type EmailPostForm struct {
	Name     string `form:"name" binding:"required,max=25"` // Sender name
	Email    string `form:"email" binding:"required,email"` // Sender address
	To       string `form:"to" binding:"required,email"`    // Recipient address
	Comments string `form:"comments" binding:"max=2000"`    // Optional comments
}

// PostListHandler renders one page of published posts
func PostListHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var total int64 // Published post count
		if err := db.WithContext(ctx).Model(&domain.Post{}).Scopes(domain.Published).Count(&total).Error; err != nil {
			serverError(c, err, "Failed to count posts")
			return
		}
		// Clamp the requested page into range
		page := utils.Paginator{Count: total, PerPage: PostsPerPage}.Page(c.Query("page"))
		var posts []domain.Post
		if err := db.WithContext(ctx).Scopes(domain.Published).Preload("Author").
			Order("publish desc, id desc").
			Offset(page.Offset).
			Limit(page.PerPage).
			Find(&posts).Error; err != nil {
			serverError(c, err, "Failed to fetch posts")
			return
		}
		render(c, http.StatusOK, "blog/post/list.html", gin.H{"page": page, "posts": posts})
	}
}

// PostDetailHandler renders a published post by publish date and slug
func PostDetailHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, ok := parseDay(c.Param("year"), c.Param("month"), c.Param("day"))
		if !ok {
			notFound(c, "No such post.")
			return
		}
		var post domain.Post
		err := db.WithContext(c.Request.Context()).Scopes(domain.Published).Preload("Author").
			Where("slug = ? AND publish >= ? AND publish < ?", c.Param("slug"), day, day.AddDate(0, 0, 1)).
			First(&post).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				notFound(c, "No such post.")
				return
			}
			serverError(c, err, "Failed to load post")
			return
		}
		render(c, http.StatusOK, "blog/post/detail.html", gin.H{"post": post})
	}
}

// parseDay turns year/month/day path segments into the start of that UTC day
func parseDay(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// Reject dates time.Date had to normalize, e.g. February 30
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// PostShareHandler shows the share form and emails the post link.
// Links point at siteURL, never at the request Host header.
func PostShareHandler(db *gorm.DB, mailer mail.Mailer, from, siteURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			notFound(c, "No such post.")
			return
		}
		var post domain.Post
		if err := db.WithContext(c.Request.Context()).Scopes(domain.Published).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				notFound(c, "No such post.")
				return
			}
			serverError(c, err, "Failed to load post")
			return
		}
		if c.Request.Method != http.MethodPost {
			render(c, http.StatusOK, "blog/post/share.html", gin.H{"post": post, "form": EmailPostForm{}, "sent": false})
			return
		}
		var form EmailPostForm // Bind form to struct
		if err := c.ShouldBind(&form); err != nil {
			render(c, http.StatusBadRequest, "blog/post/share.html", gin.H{
				"post":   post,
				"form":   form,
				"sent":   false,
				"errors": formErrors(err),
			})
			return
		}
		msg := shareMessage(post, form, absoluteURL(siteURL, post.AbsoluteURL()), from)
		if err := mailer.Send(c.Request.Context(), msg); err != nil {
			logrus.WithFields(logrus.Fields{
				"post_id": post.ID,     // Shared post
				"to":      form.To,     // Recipient
				"error":   err.Error(), // Error message
			}).Error("Share mail failed")
			render(c, http.StatusBadGateway, "blog/post/share.html", gin.H{
				"post":  post,
				"form":  form,
				"sent":  false,
				"error": "The e-mail could not be sent. Please try again later.",
			})
			return
		}
		logrus.WithFields(logrus.Fields{
			"post_id": post.ID,
			"to":      form.To,
		}).Info("Post shared")
		render(c, http.StatusOK, "blog/post/share.html", gin.H{"post": post, "form": form, "sent": true})
	}
}

// shareMessage composes the recommendation email
func shareMessage(post domain.Post, form EmailPostForm, postURL, from string) mail.Message {
	return mail.Message{
		From:    from,
		To:      []string{form.To},
		Subject: fmt.Sprintf("%s (%s) recommends you reading %q", form.Name, form.Email, post.Title),
		Body:    fmt.Sprintf("Read %q at %s\n\n%s's comments: %s", post.Title, postURL, form.Name, form.Comments),
	}
}
