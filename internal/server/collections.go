package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/editbuffer"
	"github.com/alexanderramin/waypoint/internal/service"
)

// collectionRoutes describes one editable project list served over HTTP.
type collectionRoutes[T editbuffer.Element[T]] struct {
	name     domain.Collection
	feature  string
	registry *editbuffer.Registry[T]
	render   func(T) any
}

type addItemRequest struct {
	Title string `json:"title"`
}

type editFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// mountCollection registers the buffer endpoints of one collection. Every
// endpoint answers 403 while the collection's feature is disabled.
func mountCollection[T editbuffer.Element[T]](s *Server, g *gin.RouterGroup, col collectionRoutes[T]) {
	g.Use(s.requireProject, s.requireFeature(col.feature))
	g.GET("", func(c *gin.Context) { handleSnapshot(s, c, col) })
	g.POST("/load", func(c *gin.Context) { handleLoad(s, c, col) })
	g.POST("/items", func(c *gin.Context) { handleAddItem(s, c, col) })
	g.PATCH("/items/:itemID", func(c *gin.Context) { handleEditItem(s, c, col) })
	g.DELETE("/items/:itemID", func(c *gin.Context) { handleDeleteItem(s, c, col) })
	g.POST("/reorder", func(c *gin.Context) { handleReorder(s, c, col) })
	g.POST("/publish", func(c *gin.Context) { handlePublish(s, c, col) })
}

// buffer returns the project's buffer, loading it on first use.
func (col collectionRoutes[T]) buffer(c *gin.Context) (*editbuffer.Buffer[T], error) {
	p := projectFrom(c)
	return col.registry.Get(c.Request.Context(), p.ID)
}

func (col collectionRoutes[T]) view(b *editbuffer.Buffer[T]) bufferView {
	return newBufferView(col.name, b.Snapshot(), col.render)
}

func handleSnapshot[T editbuffer.Element[T]](s *Server, c *gin.Context, col collectionRoutes[T]) {
	b, err := col.buffer(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, col.view(b))
}

// handleLoad discards local edits and reloads the stored list.
func handleLoad[T editbuffer.Element[T]](s *Server, c *gin.Context, col collectionRoutes[T]) {
	b, err := col.buffer(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := b.Load(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, col.view(b))
}

func handleAddItem[T editbuffer.Element[T]](s *Server, c *gin.Context, col collectionRoutes[T]) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	b, err := col.buffer(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	item, err := b.Add(c.Request.Context(), req.Title)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, col.render(item))
}

func handleEditItem[T editbuffer.Element[T]](s *Server, c *gin.Context, col collectionRoutes[T]) {
	var req editFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	if req.Field == "" {
		s.respondError(c, badRequest(errors.New("field is required")))
		return
	}
	b, err := col.buffer(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := b.EditField(c.Param("itemID"), req.Field, req.Value); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, col.view(b))
}

func handleDeleteItem[T editbuffer.Element[T]](s *Server, c *gin.Context, col collectionRoutes[T]) {
	b, err := col.buffer(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := b.Delete(c.Request.Context(), c.Param("itemID")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, col.view(b))
}

func handleReorder[T editbuffer.Element[T]](s *Server, c *gin.Context, col collectionRoutes[T]) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, badRequest(err))
		return
	}
	if req.From == nil || req.To == nil {
		s.respondError(c, badRequest(errors.New("from and to are required")))
		return
	}
	b, err := col.buffer(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := b.Reorder(*req.From, *req.To); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, col.view(b))
}

// handlePublish writes the buffer back. A failed publish answers 502 with
// the batch counts; the buffer keeps its edits for a retry.
func handlePublish[T editbuffer.Element[T]](s *Server, c *gin.Context, col collectionRoutes[T]) {
	b, err := col.buffer(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := service.PublishObserved(c.Request.Context(), s.deps.Collections.Observer(), col.name, b)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		s.respondErrorWith(c, status, fmt.Errorf("publishing %s: %w", col.name, err), res)
		return
	}
	respondSuccess(c, http.StatusOK, res)
}
