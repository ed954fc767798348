package server

import (
	"net/http"
	"strconv"

	"grievbot/bot/db"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

const defaultListLimit = 100

// GetGrievances lists the backlog, filterable by issue, status and a
// location substring, highest priority first.
func GetGrievances(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	filter := db.Filter{
		Issue:    c.Query("issue"),
		Status:   c.Query("status"),
		Location: c.Query("location"),
		Limit:    queryLimit(c, defaultListLimit),
	}

	list, err := db.ListAll(dbc, filter)
	if err != nil {
		log.Errorf("Failed to list grievances: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, list)
}

// GetSummary returns the headline numbers for the dashboard front page.
func GetSummary(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	summary, err := db.Summary(dbc)
	if err != nil {
		log.Errorf("Failed to compute summary: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, summary)
}

// GetCountsByIssue breaks the backlog down per category.
func GetCountsByIssue(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	counts, err := db.CountsByIssue(dbc)
	if err != nil {
		log.Errorf("Failed to count grievances: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, counts)
}

// GetTopPriority returns the highest-scored pending grievances.
func GetTopPriority(c *gin.Context) {
	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	list, err := db.TopByPriority(dbc, queryLimit(c, 10))
	if err != nil {
		log.Errorf("Failed to list top grievances: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.IndentedJSON(http.StatusOK, list)
}

// GetPhoto serves the photo blob of one grievance.
func GetPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid grievance id.")
		return
	}

	dbc, err := getServerDB()
	if err != nil {
		log.Errorf("No database connection: %v", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	g, err := db.GetByID(dbc, id)
	if err != nil {
		c.String(http.StatusNotFound, "Grievance not found.")
		return
	}
	if len(g.Photo) == 0 {
		c.String(http.StatusNotFound, "Grievance has no photo.")
		return
	}
	c.Data(http.StatusOK, "image/jpeg", g.Photo)
}

func queryLimit(c *gin.Context, fallback uint64) uint64 {
	limit, err := strconv.ParseUint(c.Query("limit"), 10, 64)
	if err != nil || limit == 0 {
		return fallback
	}
	return limit
}
