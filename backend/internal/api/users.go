package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/state"
)

type createUserRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required"`
}

type subscriptionRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.repo.ListUsers(c.Request.Context())
	if err != nil {
		s.respondError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.repo.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := s.repo.CreateUser(c.Request.Context(), graph.NewUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		s.respondError(c, "create user", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) changeUser(c *gin.Context) {
	var patch state.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	user, err := s.repo.ChangeUser(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, "change user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// deleteUser cascades and responds with the removed user
func (s *Server) deleteUser(c *gin.Context) {
	result, err := s.repo.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "delete user", err)
		return
	}
	s.logger.Debug("Cascade removed",
		zap.String("user_id", result.User.ID),
		zap.Strings("unsubscribed", result.UnsubscribedUserIDs),
		zap.String("profile_id", result.ProfileID),
		zap.Strings("post_ids", result.PostIDs))
	c.JSON(http.StatusOK, result.User)
}

// subscribeTo makes the body user a subscriber of the path user and
// responds with the subscriber.
func (s *Server) subscribeTo(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subscriber, err := s.repo.SubscribeTo(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		s.respondError(c, "subscribe", err)
		return
	}
	c.JSON(http.StatusOK, subscriber)
}

func (s *Server) unsubscribeFrom(c *gin.Context) {
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	subscriber, err := s.repo.UnsubscribeFrom(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		s.respondError(c, "unsubscribe", err)
		return
	}
	c.JSON(http.StatusOK, subscriber)
}
