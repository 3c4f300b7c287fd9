package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialgraph/backend/internal/graph"
	"socialgraph/backend/internal/state"
)

type createProfileRequest struct {
	Avatar       string `json:"avatar" binding:"required"`
	Sex          string `json:"sex" binding:"required"`
	Birthday     *int   `json:"birthday" binding:"required"`
	Country      string `json:"country" binding:"required"`
	Street       string `json:"street" binding:"required"`
	City         string `json:"city" binding:"required"`
	MemberTypeID string `json:"memberTypeId" binding:"required"`
	UserID       string `json:"userId" binding:"required"`
}

func (s *Server) listProfiles(c *gin.Context) {
	profiles, err := s.repo.ListProfiles(c.Request.Context())
	if err != nil {
		s.respondError(c, "list profiles", err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.repo.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) createProfile(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := s.repo.CreateProfile(c.Request.Context(), graph.NewProfile{
		Avatar:       req.Avatar,
		Sex:          req.Sex,
		Birthday:     *req.Birthday,
		Country:      req.Country,
		Street:       req.Street,
		City:         req.City,
		MemberTypeID: state.MemberTypeID(req.MemberTypeID),
		UserID:       req.UserID,
	})
	if err != nil {
		s.respondError(c, "create profile", err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (s *Server) changeProfile(c *gin.Context) {
	var patch state.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	profile, err := s.repo.UpdateProfile(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, "change profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) deleteProfile(c *gin.Context) {
	profile, err := s.repo.DeleteProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "delete profile", err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
