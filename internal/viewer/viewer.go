// Package viewer serves a timeline session over HTTP so a browser front end
// can render the layout and send pointer gestures back.
package viewer

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/NathanEdg/pulse/internal/errors"
	"github.com/NathanEdg/pulse/internal/logging"
	"github.com/NathanEdg/pulse/internal/render"
	"github.com/NathanEdg/pulse/internal/store"
	"github.com/NathanEdg/pulse/internal/task"
	"github.com/NathanEdg/pulse/internal/timeline"
	"github.com/gin-gonic/gin"
)

// Server exposes one timeline session. The timeline is not safe for
// concurrent use, so every handler holds mu.
type Server struct {
	mu     sync.Mutex
	tl     *timeline.Timeline
	style  render.Style
	logger *logging.Logger
	router *gin.Engine
}

// NewServer creates a server for tl.
func NewServer(tl *timeline.Timeline, style render.Style, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		tl:     tl,
		style:  style,
		logger: logger.WithComponent("viewer"),
		router: router,
	}
	router.Use(s.logRequests)

	router.GET("/timeline", s.handleGetTimeline)
	router.POST("/timeline", s.handlePostTimeline)
	router.GET("/timeline.svg", s.handleGetSVG)

	gestures := router.Group("/gestures")
	{
		gestures.POST("/down", s.handleDown)
		gestures.POST("/move", s.handleMove)
		gestures.POST("/up", s.handleUp)
		gestures.POST("/cancel", s.handleCancel)
	}

	router.POST("/dependencies", s.handleAddDependency)
	router.DELETE("/dependencies", s.handleRemoveDependency)
	router.POST("/schedule", s.handleAutoSchedule)

	view := router.Group("/viewport")
	{
		view.POST("/scroll", s.handleScroll)
		view.POST("/zoom", s.handleZoom)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Reconcile re-seeds the session from an external document, e.g. after the
// backing file changed on disk.
func (s *Server) Reconcile(doc *store.Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tl.Reconcile(doc.Tasks, doc.Cycles)
}

// Start listens on host:port and serves in the background. It returns the
// base URL, e.g. "http://127.0.0.1:7171".
func (s *Server) Start(host string, port int) (string, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen on %s: %w", addr, err)
	}
	go s.serve(ln)
	s.logger.Info("viewer listening", "addr", addr)
	return "http://" + addr, nil
}

// serve blocks on ln and logs why it stopped. A closed listener is a normal
// shutdown.
func (s *Server) serve(ln net.Listener) {
	err := http.Serve(ln, s.router)
	if err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Error("viewer stopped serving", "addr", ln.Addr().String(), "error", err)
	}
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start))
}

// --- request bodies ---

type pointerRequest struct {
	Task  string  `json:"task"`
	Kind  string  `json:"kind"`
	X     float64 `json:"x"`
	Shift bool    `json:"shift"`
	Ctrl  bool    `json:"ctrl"`
}

func (r pointerRequest) modifiers() timeline.Modifiers {
	return timeline.Modifiers{Shift: r.Shift, Ctrl: r.Ctrl}
}

type edgeRequest struct {
	Source string `json:"source" form:"source" binding:"required"`
	Target string `json:"target" form:"target" binding:"required"`
}

type scrollRequest struct {
	ScrollLeft  float64 `json:"scroll_left"`
	ClientWidth float64 `json:"client_width" binding:"required"`
}

type zoomRequest struct {
	PixelsPerDay float64 `json:"pixels_per_day"`
	Factor       float64 `json:"factor"`
	PointerX     float64 `json:"pointer_x"`
	ScrollLeft   float64 `json:"scroll_left"`
}

// --- handlers ---

func (s *Server) handleGetTimeline(c *gin.Context) {
	s.mu.Lock()
	l := s.tl.Layout()
	s.mu.Unlock()
	c.JSON(http.StatusOK, l)
}

func (s *Server) handlePostTimeline(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := store.DecodeJSON(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	reseeded := s.tl.Reconcile(doc.Tasks, doc.Cycles)
	if reseeded {
		s.tl.CoverTasks()
	}
	l := s.tl.Layout()
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"reseeded": reseeded, "warnings": doc.Warnings, "layout": l})
}

func (s *Server) handleGetSVG(c *gin.Context) {
	s.mu.Lock()
	l := s.tl.Layout()
	s.mu.Unlock()
	c.Data(http.StatusOK, "image/svg+xml", []byte(render.SVG(l, s.style)))
}

func (s *Server) handleDown(c *gin.Context) {
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kind, err := timeline.ParseKind(req.Kind)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tl.PointerDown(req.Task, kind, req.X, req.modifiers()); err != nil {
		s.fail(c, err)
		return
	}
	d, _ := s.tl.Drag()
	c.JSON(http.StatusOK, gin.H{"drag": d})
}

func (s *Server) handleMove(c *gin.Context) {
	var req pointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tl.PointerMove(req.X, req.modifiers()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.tl.Layout())
}

func (s *Server) handleUp(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.tl.PointerUp()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": nonNil(changed)})
}

func (s *Server) handleCancel(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tl.Cancel(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddDependency(c *gin.Context) {
	var req edgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.tl.CreateDependency(req.Source, req.Target)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"edge": timeline.Edge{SourceID: req.Source, TargetID: req.Target}, "changed": nonNil(changed)})
}

func (s *Server) handleRemoveDependency(c *gin.Context) {
	var req edgeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.tl.RemoveDependency(req.Source, req.Target); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAutoSchedule(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := s.tl.AutoSchedule()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": nonNil(changed)})
}

func (s *Server) handleScroll(c *gin.Context) {
	var req scrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	adj := s.tl.Scroll(req.ScrollLeft, req.ClientWidth)
	width := s.tl.Viewport().TotalWidth()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"adjustment": adj, "width": width})
}

func (s *Server) handleZoom(c *gin.Context) {
	var req zoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.PixelsPerDay <= 0 && req.Factor <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pixels_per_day or factor is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if req.Factor > 0 {
		c.JSON(http.StatusOK, s.tl.ZoomBy(req.Factor, req.PointerX, req.ScrollLeft))
		return
	}
	c.JSON(http.StatusOK, s.tl.Zoom(req.PixelsPerDay, req.PointerX, req.ScrollLeft))
}

// fail maps controller errors to responses. Advisory errors get 409 so the
// front end can show them as a notice and keep going.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsUserFacing(err):
		status = http.StatusConflict
	case errors.Is(err, errors.ErrNoGesture):
		status = http.StatusConflict
	case errors.Is(err, errors.ErrTaskNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{
		"error":       errors.UserMessage(err),
		"user_facing": errors.IsUserFacing(err),
	})
}

func nonNil(tasks []task.Task) []task.Task {
	if tasks == nil {
		return []task.Task{}
	}
	return tasks
}
