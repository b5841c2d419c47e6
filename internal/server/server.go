// Package server 갱신 이력을 조회하는 읽기 전용 HTTP API.
package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dartarchive/internal/store"
)

// Server HTTP 서버
type Server struct {
	router *gin.Engine
	store  *store.Store
}

func New(st *store.Store, devMode bool) *Server {
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router: gin.Default(),
		store:  st,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/health", s.getHealth)
		api.GET("/runs", s.listRuns)
	}
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit은 1~200 사이의 정수"})
			return
		}
		limit = n
	}

	runs, err := s.store.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type runView struct {
		ID            string `json:"id"`
		Quarter       string `json:"quarter"`
		TargetColumn  string `json:"target_column"`
		ResolvedCount int    `json:"resolved_count"`
		SkippedCount  int    `json:"skipped_count"`
		Status        string `json:"status"`
		ErrorMessage  string `json:"error_message,omitempty"`
		StartedAt     string `json:"started_at"`
		CompletedAt   string `json:"completed_at,omitempty"`
	}

	views := make([]runView, 0, len(runs))
	for _, r := range runs {
		v := runView{
			ID:            r.ID,
			Quarter:       r.Quarter,
			TargetColumn:  r.TargetColumn,
			ResolvedCount: r.ResolvedCount,
			SkippedCount:  r.SkippedCount,
			Status:        r.Status,
			ErrorMessage:  r.ErrorMessage,
			StartedAt:     r.StartedAt.Format("2006-01-02 15:04:05"),
		}
		if r.CompletedAt != nil {
			v.CompletedAt = r.CompletedAt.Format("2006-01-02 15:04:05")
		}
		views = append(views, v)
	}
	c.JSON(http.StatusOK, gin.H{"runs": views})
}

// Handler 테스트용 http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 서버를 띄운다
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
