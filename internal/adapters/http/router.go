package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/FrameBridge/internal/adapters/signal"
	"github.com/dkeye/FrameBridge/internal/app"
	"github.com/dkeye/FrameBridge/internal/config"
	"github.com/dkeye/FrameBridge/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type postRequest struct {
	Data any `json:"data" binding:"required"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, host *app.Host, ctrl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("FrameBridgeSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"listener": host.Channel().State().String(),
		})
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/contexts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"contexts": host.Registry.List()})
	})

	api.POST("/contexts/:id/messages", func(c *gin.Context) {
		var req postRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid data"})
			return
		}
		id := domain.ContextID(c.Param("id"))
		if err := host.SendTo(id, req.Data); err != nil {
			if errors.Is(err, app.ErrUnknownContext) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"to": id, "target_origin": host.Channel().TargetOrigin()})
	})

	api.DELETE("/contexts/:id", func(c *gin.Context) {
		id := domain.ContextID(c.Param("id"))
		if err := host.Disconnect(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.POST("/broadcast", func(c *gin.Context) {
		var req postRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid data"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"addressed": host.Broadcast(req.Data)})
	})

	api.GET("/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"messages": host.Inbox.Snapshot()})
	})

	api.POST("/messages", func(c *gin.Context) {
		var req postRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid data"})
			return
		}
		host.Post(req.Data)
		c.Status(http.StatusAccepted)
	})

	api.GET("/ws/frame", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("client_token", c.GetString("client_token")).Msg("ws frame endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
