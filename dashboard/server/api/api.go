// Package api holds the dashboard's request and response payloads.
package api

// UpdateStatusArgs flips a grievance between Pending and Completed.
type UpdateStatusArgs struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// NotifyArgs forwards a grievance to its responsible department.
type NotifyArgs struct {
	ID int64 `json:"id"`
}

// NotifyResp reports where the grievance was routed.
type NotifyResp struct {
	ID         int64  `json:"id"`
	Department string `json:"department"`
}
