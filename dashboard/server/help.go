package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func Help(c *gin.Context) {
	c.String(http.StatusOK, `
	Grievance Dashboard API:
	Municipal grievance triage server, version 1.0, 2026.
	`)
}
