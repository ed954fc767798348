// Package server is the operator dashboard API: browse and triage the
// grievance backlog, flip statuses, notify departments and export reports.
package server

import (
	"flag"
	"fmt"
	"time"

	"grievbot/bot/issue"
	"grievbot/bot/notify"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	EndPointHelp             = "/help"
	EndPointGrievances       = "/grievances"
	EndPointSummary          = "/summary"
	EndPointCountsByIssue    = "/counts_by_issue"
	EndPointTopPriority      = "/top_priority"
	EndPointPhoto            = "/photo/:id"
	EndPointUpdateStatus     = "/update_status"
	EndPointNotifyDepartment = "/notify_department"
	EndPointReportCSV        = "/report.csv"
)

var (
	serverPort = flag.Int("port", 8080, "The port used by the dashboard.")

	catalog   *issue.Config
	publisher *notify.Publisher
)

func StartService(issueCatalog *issue.Config, notifyPublisher *notify.Publisher) {
	log.Info("Starting the dashboard service...")
	catalog = issueCatalog
	publisher = notifyPublisher

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET(EndPointHelp, Help)
	router.GET(EndPointGrievances, GetGrievances)
	router.GET(EndPointSummary, GetSummary)
	router.GET(EndPointCountsByIssue, GetCountsByIssue)
	router.GET(EndPointTopPriority, GetTopPriority)
	router.GET(EndPointPhoto, GetPhoto)
	router.POST(EndPointUpdateStatus, UpdateStatus)
	router.POST(EndPointNotifyDepartment, NotifyDepartment)
	router.GET(EndPointReportCSV, GetReportCSV)

	router.Run(fmt.Sprintf(":%d", *serverPort))
	log.Info("Finished the dashboard service. Should not ever being seen.")
}
