package server

import (
	"net/http"

	"grievbot/bot/db"
	"grievbot/dashboard/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// UpdateStatus flips a grievance between Pending and Completed.
func UpdateStatus(c *gin.Context) {
	var args api.UpdateStatusArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in /update_status call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if err := db.UpdateStatus(dbc, args.ID, args.Status); err != nil {
		log.Errorf("Failed to update status of grievance %d: %v", args.ID, err)
		c.String(http.StatusBadRequest, "Could not update status.")
		return
	}
	c.Status(http.StatusOK)
}
