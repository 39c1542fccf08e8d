package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/waypoint/internal/domain"
)

type featureToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (r featureToggleRequest) value() (bool, bool) {
	if r.Enabled == nil {
		return false, false
	}
	return *r.Enabled, true
}

func (s *Server) handleListFeatures(c *gin.Context) {
	p, err := s.deps.Projects.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	states, err := s.deps.Features.States(c.Request.Context(), p.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, states)
}

func (s *Server) handleSetProjectFeature(c *gin.Context) {
	var req featureToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	enabled, ok := req.value()
	if !ok {
		s.respondError(c, badRequest(errEnabledRequired))
		return
	}
	p, err := s.deps.Projects.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.deps.Features.SetProjectFeature(c.Request.Context(), p.ID, c.Param("feature"), enabled); err != nil {
		s.respondError(c, err)
		return
	}
	states, err := s.deps.Features.States(c.Request.Context(), p.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, states)
}

type settingsView struct {
	Features map[string]bool `json:"features"`
}

func (s *Server) settingsView(c *gin.Context) (settingsView, error) {
	settings, err := s.deps.Features.Settings(c.Request.Context())
	if err != nil {
		return settingsView{}, err
	}
	view := settingsView{Features: make(map[string]bool, len(domain.KnownFeatures))}
	for _, f := range domain.KnownFeatures {
		on, ok := settings.Lookup(domain.FeatureKey(f))
		view.Features[f] = !ok || on
	}
	return view, nil
}

func (s *Server) handleGetSettings(c *gin.Context) {
	view, err := s.settingsView(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, view)
}

func (s *Server) handleSetGlobalFeature(c *gin.Context) {
	var req featureToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	enabled, ok := req.value()
	if !ok {
		s.respondError(c, badRequest(errEnabledRequired))
		return
	}
	if err := s.deps.Features.SetGlobal(c.Request.Context(), c.Param("feature"), enabled); err != nil {
		s.respondError(c, err)
		return
	}
	view, err := s.settingsView(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, view)
}
