package server

import (
	"net/http"
	"time"

	"grievbot/bot/db"
	"grievbot/bot/notify"
	"grievbot/dashboard/server/api"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// NotifyDepartment forwards a grievance to its responsible department
// over the message broker and marks it notified.
func NotifyDepartment(c *gin.Context) {
	var args api.NotifyArgs
	if err := c.BindJSON(&args); err != nil {
		log.Errorf("Failed to get the argument in /notify_department call: %v", err)
		c.String(http.StatusBadRequest, "Could not read JSON input.")
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	g, err := db.GetByID(dbc, args.ID)
	if err != nil {
		c.String(http.StatusNotFound, "Grievance not found.")
		return
	}

	department := catalog.DepartmentFor(g.Issue)
	err = publisher.Publish(&notify.DepartmentNotification{
		GrievanceID:   g.ID,
		Department:    department,
		Issue:         g.Issue,
		Location:      g.Location,
		Grievance:     g.Grievance,
		PriorityScore: g.PriorityScore,
		NotifiedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Errorf("Failed to publish notification for grievance %d: %v", g.ID, err)
		c.Status(http.StatusInternalServerError)
		return
	}

	if err := db.MarkNotified(dbc, g.ID); err != nil {
		log.Errorf("Failed to mark grievance %d notified: %v", g.ID, err)
		c.Status(http.StatusInternalServerError)
		return
	}

	log.Infof("Grievance %d routed to %s", g.ID, department)
	c.IndentedJSON(http.StatusOK, api.NotifyResp{ID: g.ID, Department: department})
}
