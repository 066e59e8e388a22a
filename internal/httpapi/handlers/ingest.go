package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxPayloadBytes = 1 << 20

// Ingest accepts one dialogue payload on any POSTed path. Game clients
// ignore the response body, so drops are acknowledged the same way as
// accepted events and only show up in the logs and counters.
func (h *Handler) Ingest(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		log.Printf("httpapi: read payload: %v", err)
		c.String(http.StatusOK, "POST completed")
		return
	}

	if err := h.Svc.Ingest(c.Request.Context(), payload); err != nil {
		log.Printf("httpapi: drop payload: %v", err)
	}
	c.String(http.StatusOK, "POST completed")
}

// NotSupported answers every non-POST request on unrouted paths.
func (h *Handler) NotSupported(c *gin.Context) {
	c.String(http.StatusOK, "GET is not supported")
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
