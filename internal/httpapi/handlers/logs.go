package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rikuzen/chatferry/internal/common"
)

// GetDayLog returns the raw day file for a date formatted as 2006-01-02.
func (h *Handler) GetDayLog(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid date, want 2006-01-02")
		return
	}

	data, err := h.Store.Day(date)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "read day log failed")
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// Search queries the archive for records matching q.
func (h *Handler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		common.Fail(c, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, err := h.Archive.Search(q, limit)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, "search failed")
		return
	}
	common.OK(c, rows)
}
