package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/state"
)

type createPostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	UserID  string `json:"userId" binding:"required"`
}

func (s *Server) listPosts(c *gin.Context) {
	posts, err := s.repo.ListPosts(c.Request.Context())
	if err != nil {
		s.respondError(c, "list posts", err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (s *Server) getPost(c *gin.Context) {
	post, err := s.repo.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "get post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) createPost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := s.repo.CreatePost(c.Request.Context(), graph.NewPost{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	})
	if err != nil {
		s.respondError(c, "create post", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (s *Server) changePost(c *gin.Context) {
	var patch state.PostPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	post, err := s.repo.ChangePost(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, "change post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) deletePost(c *gin.Context) {
	post, err := s.repo.DeletePost(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "delete post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}
