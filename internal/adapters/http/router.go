package http

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rutaCognizant/planning-poker/internal/adapters/signal"
	"github.com/rutaCognizant/planning-poker/internal/app"
	"github.com/rutaCognizant/planning-poker/internal/audit"
	"github.com/rutaCognizant/planning-poker/internal/config"
	"github.com/rutaCognizant/planning-poker/internal/domain"
)

const sessionName = "PokerSessions"

func genClientToken() string {
	return uuid.NewString()
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

// SetupRouter wires the HTTP surface. logs may be nil when auditing is
// disabled; the admin log route then answers 503.
func SetupRouter(ctx context.Context, cfg *config.Config, hub *app.Hub, logs audit.Store) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 8, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctrl := signal.NewSignalWSController(hub, signal.OptionsFromConfig(cfg))

	api := r.Group("/api")
	api.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})
	api.GET("/version", handleVersion)
	api.GET("/cards", handleCards)

	admin := &adminHandlers{hub: hub, logs: logs, password: cfg.AdminPassword}
	g := r.Group("/admin")
	g.POST("/login", admin.login)
	g.POST("/logout", admin.logout)
	g.GET("/stats", requireAdmin(), admin.stats)
	g.GET("/logs", requireAdmin(), admin.listLogs)

	return r
}

type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"goVersion"`
}

func handleVersion(c *gin.Context) {
	resp := VersionResponse{Version: "devel"}
	if info, ok := debug.ReadBuildInfo(); ok {
		resp.GoVersion = info.GoVersion
		if v := info.Main.Version; v != "" {
			resp.Version = v
		}
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				resp.Commit = s.Value
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func handleCards(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cardValues": domain.DeckValues()})
}
