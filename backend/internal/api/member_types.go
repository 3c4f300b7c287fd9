package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialgraph/backend/internal/state"
)

func (s *Server) listMemberTypes(c *gin.Context) {
	tiers, err := s.repo.ListMemberTypes(c.Request.Context())
	if err != nil {
		s.respondError(c, "list member types", err)
		return
	}
	c.JSON(http.StatusOK, tiers)
}

func (s *Server) getMemberType(c *gin.Context) {
	tier, err := s.repo.GetMemberType(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, "get member type", err)
		return
	}
	c.JSON(http.StatusOK, tier)
}

func (s *Server) changeMemberType(c *gin.Context) {
	var patch state.MemberTypePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}

	tier, err := s.repo.UpdateMemberType(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.respondError(c, "change member type", err)
		return
	}
	c.JSON(http.StatusOK, tier)
}
