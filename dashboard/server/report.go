package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"grievbot/bot/db"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const defaultReportDays = 30

// GetReportCSV exports the grievances of the last N days as CSV,
// highest priority first.
func GetReportCSV(c *gin.Context) {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		days = defaultReportDays
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	list, err := db.ListSince(dbc, days)
	if err != nil {
		log.Errorf("Failed to build report: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=grievance_report_%dd.csv", days))

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"id", "created_at", "issue", "location", "department",
		"status", "priority_score", "notified", "grievance"})
	for _, g := range list {
		w.Write([]string{
			strconv.FormatInt(g.ID, 10),
			g.CreatedAt,
			g.Issue,
			g.Location,
			catalog.DepartmentFor(g.Issue),
			g.Status,
			strconv.FormatFloat(g.PriorityScore, 'f', 3, 64),
			strconv.FormatBool(g.NotifiedToDept),
			g.Grievance,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Errorf("Failed to write CSV report: %v", err)
	}
}
