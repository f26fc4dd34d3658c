package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"cooperativa-reports/internal/report"
	"cooperativa-reports/internal/store"
	"cooperativa-reports/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	engine *report.Engine
}

// NewHandler creates a new HTTP handler
func NewHandler(engine *report.Engine) *Handler {
	return &Handler{engine: engine}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1/reports")
	{
		v1.GET("/dashboard", h.getDashboard)
		v1.GET("/kpis", h.getKPIs)
		v1.GET("/charts", h.getCharts)
		v1.GET("/summary", h.getSummary)
		v1.GET("/products", h.getProducts)
		v1.GET("/export", h.exportDocument)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// requestScope parses the period and filter query parameters shared by the
// report endpoints.
func requestScope(c *gin.Context) (report.Period, store.Filters, error) {
	period, err := report.ResolvePeriod(c.Query("date_from"), c.Query("date_to"), time.Now())
	if err != nil {
		return report.Period{}, store.Filters{}, err
	}

	filters := store.Filters{Product: c.Query("product")}
	if member := c.Query("member"); member != "" {
		socioID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return report.Period{}, store.Filters{}, report.ErrInvalidRange
		}
		filters.SocioID = socioID
	}
	return period, filters, nil
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, report.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
	case errors.Is(err, report.ErrStorageUnreachable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "storage backend unreachable",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "failed to assemble report",
		})
	}
}

// getDashboard returns the merged KPI + charts + ranking payload
func (h *Handler) getDashboard(c *gin.Context) {
	period, filters, err := requestScope(c)
	if err != nil {
		respondError(c, err)
		return
	}

	dashboard, err := h.engine.Dashboard(c.Request.Context(), period, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dashboard})
}

// getKPIs returns only the KPI set
func (h *Handler) getKPIs(c *gin.Context) {
	period, filters, err := requestScope(c)
	if err != nil {
		respondError(c, err)
		return
	}

	dashboard, err := h.engine.Dashboard(c.Request.Context(), period, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        dashboard.KPIs,
		"diagnostics": dashboard.Diagnostics,
	})
}

// getCharts returns only the named chart map
func (h *Handler) getCharts(c *gin.Context) {
	period, filters, err := requestScope(c)
	if err != nil {
		respondError(c, err)
		return
	}

	dashboard, err := h.engine.Dashboard(c.Request.Context(), period, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dashboard.Charts})
}

// getSummary returns the period-over-period comparison table
func (h *Handler) getSummary(c *gin.Context) {
	period, filters, err := requestScope(c)
	if err != nil {
		respondError(c, err)
		return
	}

	lines, diagnostics, err := h.engine.Summary(c.Request.Context(), period, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        lines,
		"diagnostics": diagnostics,
	})
}

// getProducts returns the distinct product labels for the filter picker
func (h *Handler) getProducts(c *gin.Context) {
	products, err := h.engine.Products(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// exportDocument renders and returns the printable report
func (h *Handler) exportDocument(c *gin.Context) {
	period, _, err := requestScope(c)
	if err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.engine.Document(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
