package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/VIDUSHH/kindnesshome-backend/internal/usecase"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/livefeed"
	"github.com/VIDUSHH/kindnesshome-backend/pkg/response"
)

// FeedHandler upgrades campaign feed requests to websockets and keeps
// the read loop alive until the client goes away.
type FeedHandler struct {
	feed       *livefeed.Manager
	campaignUC *usecase.CampaignUsecase
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

func NewFeedHandler(feed *livefeed.Manager, campaignUC *usecase.CampaignUsecase, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		feed:       feed,
		campaignUC: campaignUC,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect cross-origin from the web app.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *FeedHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	if _, err := h.campaignUC.Get(r.Context(), campaignID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := h.feed.Add(campaignID, conn)
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return nil
	})

	// Read loop only services control frames; the feed is one-way.
	go func() {
		defer h.feed.Remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			c.Touch()
		}
	}()
}

// Subscribers reports the live subscriber count for a campaign feed.
func (h *FeedHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "id")
	response.JSON(w, http.StatusOK, map[string]any{
		"campaign_id": campaignID,
		"subscribers": h.feed.Subscribers(campaignID),
	})
}
