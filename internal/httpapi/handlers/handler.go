package handlers

import (
	"github.com/rikuzen/chatferry/internal/dialog"
	"github.com/rikuzen/chatferry/internal/logstore"
	"github.com/rikuzen/chatferry/internal/sink"
)

type Handler struct {
	Svc     *dialog.Service
	Store   *logstore.Store
	Archive *logstore.Archive
	Overlay *sink.OverlayHub
	Relay   *sink.TwitchRelay
}

func NewHandler(svc *dialog.Service, store *logstore.Store, archive *logstore.Archive, overlay *sink.OverlayHub, relay *sink.TwitchRelay) *Handler {
	return &Handler{Svc: svc, Store: store, Archive: archive, Overlay: overlay, Relay: relay}
}
