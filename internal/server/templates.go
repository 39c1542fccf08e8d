package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/waypoint/internal/contract"
)

type applyTemplateRequest struct {
	TemplateID     string `json:"template_id"`
	ConfirmReplace bool   `json:"confirm_replace"`
}

type applyTemplateResponse struct {
	Deleted       int                  `json:"deleted"`
	Created       []timelineItemView   `json:"created"`
	ParentsLinked int                  `json:"parents_linked"`
	Batch         contract.BatchResult `json:"batch"`
}

func newApplyTemplateResponse(res *contract.ApplyTemplateResult) applyTemplateResponse {
	out := applyTemplateResponse{
		Deleted:       res.Deleted,
		Created:       make([]timelineItemView, 0, len(res.Created)),
		ParentsLinked: res.ParentsLinked,
		Batch:         res.Batch,
	}
	for _, it := range res.Created {
		out.Created = append(out.Created, newTimelineItemView(it))
	}
	return out
}

type templateDetailView struct {
	Template templateView       `json:"template"`
	Items    []templateItemView `json:"items"`
}

// handleApplyTemplate replaces the project's timeline with a template copy.
// The project's cached timeline buffer is dropped either way, since a
// failed apply may still have changed stored items.
func (s *Server) handleApplyTemplate(c *gin.Context) {
	var req applyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	p := projectFrom(c)
	applyReq := contract.NewApplyTemplateRequest(p.ID, req.TemplateID)
	applyReq.ConfirmReplace = req.ConfirmReplace
	res, err := s.deps.Templates.Apply(c.Request.Context(), applyReq)
	if res != nil || err == nil {
		s.timeline.Drop(p.ID)
	}
	if err != nil {
		var partial any
		if res != nil {
			partial = newApplyTemplateResponse(res)
		}
		s.respondErrorWith(c, statusFor(err), err, partial)
		return
	}
	respondSuccess(c, http.StatusOK, newApplyTemplateResponse(res))
}

// handleSaveAsTemplate stores the timeline, in its current local order, as
// a new template.
func (s *Server) handleSaveAsTemplate(c *gin.Context) {
	var meta contract.TemplateMeta
	if err := c.ShouldBindJSON(&meta); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	p := projectFrom(c)
	b, err := s.timeline.Get(c.Request.Context(), p.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	res, err := s.deps.Templates.CreateFromTimeline(c.Request.Context(), contract.CreateTemplateRequest{
		ProjectID: p.ID,
		Items:     b.Snapshot().Items,
		Meta:      meta,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, templateDetailView{
		Template: newTemplateView(res.Template),
		Items:    newTemplateItemViews(res.Items),
	})
}

func (s *Server) handleListTemplates(c *gin.Context) {
	activeOnly := true
	if raw := c.Query("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(c, badRequest(errors.New("active must be a boolean")))
			return
		}
		activeOnly = v
	}
	templates, err := s.deps.Templates.List(c.Request.Context(), activeOnly)
	if err != nil {
		s.respondError(c, err)
		return
	}
	views := make([]templateView, 0, len(templates))
	for _, t := range templates {
		views = append(views, newTemplateView(t))
	}
	respondSuccess(c, http.StatusOK, views)
}

func (s *Server) handleGetTemplate(c *gin.Context) {
	t, err := s.deps.Templates.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	detail, err := s.deps.Templates.Get(c.Request.Context(), t.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, templateDetailView{
		Template: newTemplateView(detail.Template),
		Items:    newTemplateItemViews(detail.Items),
	})
}
