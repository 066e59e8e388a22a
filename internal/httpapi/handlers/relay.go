package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rikuzen/chatferry/internal/common"
)

func (h *Handler) StartRelay(c *gin.Context) {
	if err := h.Relay.Start(c.Request.Context()); err != nil {
		common.Fail(c, http.StatusBadGateway, err.Error())
		return
	}
	common.OK(c, gin.H{"active": h.Relay.Active()})
}

func (h *Handler) StopRelay(c *gin.Context) {
	h.Relay.Stop()
	common.OK(c, gin.H{"active": h.Relay.Active()})
}
