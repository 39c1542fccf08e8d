package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
)

const projectKey = "project"

// requireProject resolves :id (short ID or full ID) and stores the project
// on the request context.
func (s *Server) requireProject(c *gin.Context) {
	p, err := s.deps.Projects.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Set(projectKey, p)
	c.Next()
}

// requireFeature rejects the request when feature is off for the project.
func (s *Server) requireFeature(feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.deps.Features.Require(c.Request.Context(), projectFrom(c).ID, feature); err != nil {
			s.respondError(c, err)
			return
		}
		c.Next()
	}
}

func projectFrom(c *gin.Context) *domain.Project {
	return c.MustGet(projectKey).(*domain.Project)
}

// handleListProjects returns projects, hiding archived ones unless asked.
func (s *Server) handleListProjects(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.Query("include_archived"))
	projects, err := s.deps.Projects.List(c.Request.Context(), includeArchived)
	if err != nil {
		s.respondError(c, err)
		return
	}
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, newProjectView(p))
	}
	respondSuccess(c, http.StatusOK, views)
}

func (s *Server) handleGetProject(c *gin.Context) {
	p, err := s.deps.Projects.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, newProjectView(p))
}

// handleUpdateProject patches the project detail fields.
func (s *Server) handleUpdateProject(c *gin.Context) {
	var patch contract.ProjectDetailsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	p, err := s.deps.Projects.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	updated, err := s.deps.Projects.UpdateDetails(c.Request.Context(), p.ID, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, newProjectView(updated))
}
