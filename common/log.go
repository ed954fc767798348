package common

import (
	"database/sql"

	"github.com/apex/log"
)

// LogResult reports the outcome of a write query. With expectOne set it
// warns when the statement touched anything other than exactly one row.
func LogResult(op string, r sql.Result, err error, expectOne bool) {
	if err != nil {
		log.Errorf("%s: query failed: %v", op, err)
		return
	}
	rows, err := r.RowsAffected()
	if err != nil {
		log.Errorf("%s: failed to get rows affected: %v", op, err)
		return
	}
	if expectOne && rows != 1 {
		log.Warnf("%s: expected to affect 1 row, affected %d", op, rows)
	}
}
