package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/steveyiyo/avatar-voice/internal/config"
	"github.com/steveyiyo/avatar-voice/internal/http/handlers"
	"github.com/steveyiyo/avatar-voice/internal/http/middleware"
	"github.com/steveyiyo/avatar-voice/pkg/ws"
)

type Deps struct {
	Config  config.Config
	Service handlers.Responder
	// Audio serves stored clips; nil when audio is returned inline or lives
	// on S3.
	Audio handlers.AudioSource
	Hub   *ws.Hub
	Log   zerolog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(d.Log), gin.Recovery())
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))

	limiter := middleware.NewLimiter(d.Config.MaxConcurrentRequests)
	rh := handlers.NewRespondHandler(d.Service, d.Config.RequestTimeout())
	sh := handlers.NewStreamHandler(d.Hub, d.Service, limiter, d.Config.RequestTimeout(), d.Config.CORSOrigins, d.Log)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/respond", middleware.Timeout(d.Config.RequestTimeout()), limiter.Middleware(), rh.Respond)
	api.GET("/respond/ws", sh.WS)
	if d.Audio != nil {
		ah := handlers.NewAudioHandler(d.Audio)
		api.GET("/audio/:key", ah.Get)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
