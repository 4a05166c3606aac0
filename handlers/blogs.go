package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"clutchjobs/models"
)

// ListBlogs returns all published blog posts, newest first.
func ListBlogs(db *sql.DB) gin.HandlerFunc {
	blogs := models.NewBlogModel(db)
	return func(c *gin.Context) {
		posts, err := blogs.ListPublished()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load blog posts",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"blogs":   posts,
		})
	}
}

// GetBlogBySlug returns a single published blog post.
func GetBlogBySlug(db *sql.DB) gin.HandlerFunc {
	blogs := models.NewBlogModel(db)
	return func(c *gin.Context) {
		post, err := blogs.GetBySlug(c.Param("slug"))
		if err != nil {
			if err == sql.ErrNoRows {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Blog post not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load blog post",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"blog":    post,
		})
	}
}
