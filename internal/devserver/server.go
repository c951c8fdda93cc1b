// Package devserver is a stand-in for the agricultural data service.
//
// It answers /get_states, /get_price and /optimize from a fixture so the
// planner can be run and tested without the real forecasting backend. The
// optimizer splits land by fixed per-crop weights; it does not solve
// anything.
package devserver

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server serves a fixture over HTTP.
type Server struct {
	fixture *Fixture
	logger  *slog.Logger
	router  *gin.Engine
}

type priceRequest struct {
	Crop   string `json:"crop"`
	Region string `json:"region"`
}

type optimizeRequest struct {
	Land   float64  `json:"land"`
	Crops  []string `json:"crops"`
	State  string   `json:"state"`
	Region string   `json:"region"`
}

type allocation struct {
	Name          string   `json:"name"`
	Area          float64  `json:"area"`
	Percent       float64  `json:"percent"`
	ForecastPrice *float64 `json:"forecast_price,omitempty"`
}

// New builds the server. allowedOrigins configures CORS; empty allows all.
func New(fixture *Fixture, logger *slog.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{fixture: fixture, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/get_states", s.getStates)
	router.POST("/get_price", s.getPrice)
	router.POST("/optimize", s.optimize)

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if c.Request.URL.Path == "/health" {
			return
		}
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) getStates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"states":            s.fixture.States,
		"union_territories": s.fixture.UnionTerritories,
	})
}

func (s *Server) getPrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	price, warning, ok := s.fixture.Price(req.Crop, req.Region)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"price": "N/A"})
		return
	}

	resp := gin.H{"price": round2(price)}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) optimize(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	crops := lowerAll(req.Crops)
	if req.Land <= 0 || len(crops) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Land and crops required"})
		return
	}

	state := key(req.State)
	if state == "" {
		state = key(req.Region)
	}
	if state != "" && !s.fixture.HasRegion(state) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data for state"})
		return
	}

	var total float64
	for _, crop := range crops {
		total += s.fixture.Weight(crop)
	}
	if total == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No positive weights for crops"})
		return
	}

	alloc := make([]allocation, 0, len(crops))
	for _, crop := range crops {
		share := s.fixture.Weight(crop) / total
		entry := allocation{
			Name:    crop,
			Area:    round2(share * req.Land),
			Percent: round2(share * 100),
		}
		if f, ok := s.fixture.Forecasts[crop]; ok {
			f = round2(f)
			entry.ForecastPrice = &f
		}
		alloc = append(alloc, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"state":      state,
		"land":       req.Land,
		"allocation": alloc,
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
