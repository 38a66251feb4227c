// Package api exposes the dashboard over HTTP.
package api

import (
	"embed"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"airbnb-dashboard/dashboard"
	"airbnb-dashboard/render"
	"airbnb-dashboard/storage"
	"airbnb-dashboard/utils"
)

//go:embed index.html
var webContent embed.FS

// SessionHeader carries the session id. The "session" query parameter is
// accepted too, for image URLs.
const SessionHeader = "X-Session-ID"

// Router wires HTTP handlers.
type Router struct {
	sessions *dashboard.SessionStore
	logger   *utils.Logger
	origins  string
}

func NewRouter(sessions *dashboard.SessionStore, allowedOrigins string, logger *utils.Logger) *gin.Engine {
	r := &Router{
		sessions: sessions,
		logger:   logger,
		origins:  allowedOrigins,
	}

	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), r.corsMiddleware())

	router.GET("/", r.index)
	router.GET("/healthz", r.health)

	api := router.Group("/api")
	{
		api.GET("/metadata", r.metadata)
		api.GET("/boroughs", r.boroughs)
		api.POST("/sessions", r.createSession)

		withHub := api.Group("", r.sessionMiddleware())
		withHub.GET("/state", r.state)
		withHub.GET("/scatter", r.scatter)
		withHub.GET("/bar", r.bar)
		withHub.GET("/map", r.mapView)
		withHub.POST("/select", r.selectValue)
		withHub.DELETE("/select", r.resetSelection)
		withHub.DELETE("/select/:dimension", r.clearDimension)
		withHub.POST("/bar/sort", r.toggleBarSort)
		withHub.GET("/charts/:file", r.chart)
		withHub.GET("/listings/export", r.exportListings)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := ""
		for _, o := range trimmed {
			if o == "*" {
				allowed = "*"
				if origin != "" {
					allowed = origin
				}
				break
			}
			if o == origin {
				allowed = origin
				break
			}
		}
		if allowed != "" {
			c.Header("Access-Control-Allow-Origin", allowed)
			c.Header("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

const hubKey = "hub"

// sessionMiddleware resolves the request's hub; no id means the default one.
func (r *Router) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			id = c.Query("session")
		}
		h, ok := r.sessions.Get(id)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		c.Set(hubKey, h)
		c.Next()
	}
}

func hubFrom(c *gin.Context) *dashboard.Hub {
	return c.MustGet(hubKey).(*dashboard.Hub)
}

func (r *Router) index(c *gin.Context) {
	data, err := webContent.ReadFile("index.html")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

func (r *Router) health(c *gin.Context) {
	ds := r.sessions.Dataset()
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"listings": len(ds.Listings),
		"loadedAt": ds.LoadedAt.Format(time.RFC3339),
		"sessions": r.sessions.Len(),
	})
}

func (r *Router) metadata(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.BuildMetadata(r.sessions.Dataset()))
}

func (r *Router) boroughs(c *gin.Context) {
	ds := r.sessions.Dataset()
	if ds.Boundaries == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no borough boundaries loaded"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", ds.Boundaries.Raw())
}

func (r *Router) createSession(c *gin.Context) {
	id, h := r.sessions.Create()
	c.JSON(http.StatusCreated, gin.H{
		"session": id,
		"state":   h.Snapshot(),
	})
}

func (r *Router) state(c *gin.Context) {
	c.JSON(http.StatusOK, hubFrom(c).Snapshot())
}

func (r *Router) scatter(c *gin.Context) {
	c.JSON(http.StatusOK, hubFrom(c).ScatterView())
}

func (r *Router) bar(c *gin.Context) {
	c.JSON(http.StatusOK, hubFrom(c).BarView())
}

func (r *Router) mapView(c *gin.Context) {
	c.JSON(http.StatusOK, hubFrom(c).MapView())
}

type selectReq struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

func (r *Router) selectValue(c *gin.Context) {
	var req selectReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	dim, err := dashboard.ParseDimension(req.Dimension)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	value := strings.TrimSpace(req.Value)
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required; use DELETE to clear a dimension"})
		return
	}

	st, err := hubFrom(c).Select(dim, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (r *Router) clearDimension(c *gin.Context) {
	dim, err := dashboard.ParseDimension(c.Param("dimension"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := hubFrom(c).Clear(dim)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (r *Router) resetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, hubFrom(c).Reset())
}

func (r *Router) toggleBarSort(c *gin.Context) {
	bar, err := hubFrom(c).ToggleBarSort()
	if errors.Is(err, dashboard.ErrSortUnavailable) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, bar)
}

// chart serves /api/charts/{scatter,bar,map}.{png,svg}.
func (r *Router) chart(c *gin.Context) {
	file := c.Param("file")
	ext := path.Ext(file)
	name := strings.TrimSuffix(file, ext)

	format, err := render.ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h := hubFrom(c)
	var (
		p             *plot.Plot
		width, height = render.ChartWidth, render.ChartHeight
	)
	switch name {
	case "scatter":
		p, err = render.ScatterChart(h.ScatterView())
	case "bar":
		p, err = render.BarChart(h.BarView())
	case "map":
		view, boundaries, proj := h.MapScene()
		width, height = vg.Points(view.Width), vg.Points(view.Height)
		p, err = render.MapChart(view, boundaries, proj)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view " + name})
		return
	}
	if err != nil {
		r.logger.Error("[api] render %s: %v", file, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if err := render.Encode(c.Writer, p, width, height, format); err != nil {
		r.logger.Error("[api] encode %s: %v", file, err)
	}
}

func (r *Router) exportListings(c *gin.Context) {
	listings := hubFrom(c).Filtered()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=listings.csv")

	w, err := storage.NewCSVWriter(c.Writer)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if err := w.Write(listings); err != nil {
		r.logger.Error("[api] export listings: %v", err)
	}
}
