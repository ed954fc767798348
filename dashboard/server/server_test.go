package server

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"grievbot/bot/db"
	"grievbot/bot/issue"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

var mock sqlmock.Sqlmock

// testRouter wires the handlers against a sqlmock-backed pool.
func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var testDB *sql.DB
	testDB, mock, _ = sqlmock.New()
	t.Cleanup(func() { testDB.Close() })

	serverDBOnce.Do(func() {})
	serverDB = testDB
	serverDBErr = nil

	var err error
	catalog, err = issue.Load("")
	if err != nil {
		t.Fatalf("loading issue config: %v", err)
	}
	publisher = nil

	router := gin.New()
	router.GET(EndPointGrievances, GetGrievances)
	router.GET(EndPointSummary, GetSummary)
	router.GET(EndPointCountsByIssue, GetCountsByIssue)
	router.GET(EndPointTopPriority, GetTopPriority)
	router.POST(EndPointUpdateStatus, UpdateStatus)
	router.POST(EndPointNotifyDepartment, NotifyDepartment)
	router.GET(EndPointReportCSV, GetReportCSV)
	return router
}

var grievanceColumns = []string{
	"id", "user_id", "username", "grievance", "issue", "location", "photo IS NOT NULL",
	"additional_data", "ai_reply", "sentiment_score", "keyword_score", "frequency_score",
	"priority_score", "status", "notified_to_dept", "created_at",
}

func addGrievanceRow(rows *sqlmock.Rows, id int64, issue string) *sqlmock.Rows {
	return rows.AddRow(id, int64(7), "asha", "fire near the market", issue, "Central Market",
		false, "", "", 0.5, 0.95, 0.9, 0.805, db.StatusPending, false, "2026-08-01 10:00:00")
}

func TestGetGrievancesFiltered(t *testing.T) {
	router := testRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM grievances WHERE issue = (.+)").
		WithArgs("Fire Hazards").
		WillReturnRows(addGrievanceRow(sqlmock.NewRows(grievanceColumns), 12, "Fire Hazards"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/grievances?issue=Fire+Hazards", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"issue": "Fire Hazards"`) {
		t.Errorf("response missing grievance: %s", w.Body.String())
	}
}

func TestGetSummary(t *testing.T) {
	router := testRouter(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\),").
		WillReturnRows(sqlmock.NewRows(
			[]string{"total", "pending", "completed", "notified", "avg"}).
			AddRow(3, 2, 1, 0, 0.42))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/summary", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"total": 3`) {
		t.Errorf("summary mismatch: %s", w.Body.String())
	}
}

func TestUpdateStatus(t *testing.T) {
	router := testRouter(t)

	mock.ExpectExec("UPDATE grievances SET status = (.+) WHERE id = (.+)").
		WithArgs(db.StatusCompleted, int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/update_status",
		strings.NewReader(`{"id": 12, "status": "Completed"}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown statuses are rejected before touching the database.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/update_status",
		strings.NewReader(`{"id": 12, "status": "Archived"}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid status, got %d", w.Code)
	}
}

func TestNotifyDepartment(t *testing.T) {
	router := testRouter(t)

	getByIDColumns := []string{
		"id", "user_id", "username", "grievance", "issue", "location", "photo",
		"additional_data", "ai_reply", "sentiment_score", "keyword_score",
		"frequency_score", "priority_score", "status", "notified_to_dept", "created_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM grievances WHERE id = (.+)").
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows(getByIDColumns).
			AddRow(12, 7, "asha", "fire near the market", "Fire Hazards", "Central Market",
				nil, "", "", 0.5, 0.95, 0.9, 0.805, db.StatusPending, false, "2026-08-01 10:00:00"))
	mock.ExpectExec("UPDATE grievances SET notified_to_dept = TRUE").
		WithArgs(int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/notify_department",
		strings.NewReader(`{"id": 12}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Fire Department") {
		t.Errorf("expected routing to Fire Department: %s", w.Body.String())
	}
}

func TestGetReportCSV(t *testing.T) {
	router := testRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM grievances WHERE created_at >=").
		WithArgs(30).
		WillReturnRows(addGrievanceRow(sqlmock.NewRows(grievanceColumns), 12, "Fire Hazards"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report.csv", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("expected CSV content type, got %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "id,created_at,issue") {
		t.Errorf("missing CSV header: %s", body)
	}
	if !strings.Contains(body, "12,2026-08-01 10:00:00,Fire Hazards,Central Market,Fire Department,Pending,0.805,false") {
		t.Errorf("missing CSV row: %s", body)
	}
}
