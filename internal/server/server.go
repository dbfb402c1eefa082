// Package server exposes an editing session over HTTP. Each gesture of the
// diagram editor maps to one request, or to a sequence of requests for
// retargets, which span a drag.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine serving session
func NewRouter(session *Session) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), cors.Default())
	RegisterRoutes(router, NewDiagramHandler(session))
	return router
}

func RegisterRoutes(router *gin.Engine, handler *DiagramHandler) {
	api := router.Group("/api/v1")
	{
		api.GET("/diagram", handler.GetDiagram)
		api.GET("/schemas", handler.GetSchemas)
		api.PUT("/schemas", handler.PutSchemas)
		api.POST("/connections", handler.CreateConnection)
		api.DELETE("/edges/:id", handler.DeleteEdge)
		api.POST("/retargets", handler.StartRetarget)
		api.PUT("/retargets/:id", handler.UpdateRetarget)
		api.POST("/retargets/:id/end", handler.EndRetarget)
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}

// NewServer creates the HTTP server for session listening on addr
func NewServer(addr string, session *Session) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      NewRouter(session),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
