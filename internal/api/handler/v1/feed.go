package v1

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type TicketFeed interface {
	Serve(conn *websocket.Conn)
}

type FeedHandler struct {
	feed     TicketFeed
	upgrader websocket.Upgrader
}

// NewFeedHandler accepts websocket upgrades from the given origins, or
// from anywhere when allowedOrigins is empty or "*".
func NewFeedHandler(feed TicketFeed, allowedOrigins []string) *FeedHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	anyOrigin := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		allowed[o] = struct{}{}
	}

	return &FeedHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if anyOrigin || origin == "" {
					return true
				}
				if _, ok := allowed[origin]; ok {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// HandleFeed godoc
// @Summary      Live feed of issued tickets
// @Description  Upgrades to a websocket that receives a ticket.issued message for every new registration.
// @Tags         admin
// @Param        token  query     string  false  "JWT, for clients that cannot send headers"
// @Success      101    {string}  string  "Switching Protocols"
// @Failure      401    {object}  response.Err
// @Router       /admin/feed [get]
// @Security BearerAuth
func (h *FeedHandler) HandleFeed(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		zap.L().Warn("h.upgrader.Upgrade", zap.Error(err))
		return
	}

	h.feed.Serve(conn)
}
