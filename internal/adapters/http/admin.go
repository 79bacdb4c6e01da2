package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rutaCognizant/planning-poker/internal/app"
	"github.com/rutaCognizant/planning-poker/internal/audit"
)

const adminKey = "admin"

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type RoomSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Members int    `json:"members"`
	Votes   int    `json:"votes"`
	State   string `json:"state"`
}

type StatsResponse struct {
	ActiveRooms    int           `json:"activeRooms"`
	ConnectedUsers int           `json:"connectedUsers"`
	RoomMembers    int           `json:"roomMembers"`
	Rooms          []RoomSummary `json:"rooms"`
}

type adminHandlers struct {
	hub      *app.Hub
	logs     audit.Store
	password string
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, _ := sessions.Default(c).Get(adminKey).(bool); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin login required"})
			return
		}
		c.Next()
	}
}

func (a *adminHandlers) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid password"})
		return
	}
	if a.password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(a.password)) != 1 {
		log.Warn().Str("module", "adapters.http").Str("ip", c.ClientIP()).Msg("admin login failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		return
	}

	s := sessions.Default(c)
	s.Set(adminKey, true)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session error"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("ip", c.ClientIP()).Msg("admin logged in")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *adminHandlers) logout(c *gin.Context) {
	s := sessions.Default(c)
	s.Delete(adminKey)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("save session")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *adminHandlers) stats(c *gin.Context) {
	st, err := a.hub.Stats(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("hub stats")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hub unavailable"})
		return
	}

	resp := StatsResponse{
		ActiveRooms:    st.ActiveRooms,
		ConnectedUsers: st.Connections,
		RoomMembers:    st.RoomMembers,
		Rooms:          make([]RoomSummary, 0, len(st.Rooms)),
	}
	for _, r := range st.Rooms {
		resp.Rooms = append(resp.Rooms, RoomSummary{
			ID:      string(r.ID),
			Name:    string(r.Name),
			Members: r.MemberCount,
			Votes:   r.VoteCount,
			State:   r.State,
		})
	}
	c.JSON(http.StatusOK, resp)
}

var errBadLimit = errors.New("limit must be a positive integer")

func (a *adminHandlers) listLogs(c *gin.Context) {
	if a.logs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log disabled"})
		return
	}
	f := audit.Filter{
		Action:   audit.Action(c.Query("action")),
		RoomID:   c.Query("roomId"),
		UserName: c.Query("userName"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errBadLimit.Error()})
			return
		}
		f.Limit = n
	}

	entries, err := a.logs.Query(c.Request.Context(), f)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("query audit log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
