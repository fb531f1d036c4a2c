package internal

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// PageSize is the fixed number of call records per page.
const PageSize = 20

// CallFilter narrows the call history view. Zero values mean "not supplied" and
// are omitted from the predicate set entirely.
type CallFilter struct {
	PhoneNumber string
	CallType    int
	Date        string // YYYY-MM-DD, matched against the converted calendar date
}

// callSortColumns is the closed set of sortable columns. Sort parameters arrive
// from the query string and must never be interpolated into SQL unvalidated.
var callSortColumns = map[string]string{
	"address":   "ZADDRESS",
	"call_type": "ZCALLTYPE",
	"call_date": "ZDATE",
	"duration":  "ZDURATION",
}

const (
	defaultSortColumn = "call_date"
	defaultSortOrder  = "DESC"
)

// NormalizeCallSort validates a requested sort column and direction against the
// allow-list, falling back to the default (call date, newest first) for any
// unrecognized value instead of erroring.
func NormalizeCallSort(sortBy, order string) (string, string) {
	if _, ok := callSortColumns[sortBy]; !ok {
		sortBy = defaultSortColumn
	}
	order = strings.ToUpper(order)
	if order != "ASC" && order != "DESC" {
		order = defaultSortOrder
	}
	return sortBy, order
}

// NewPagination derives page metadata from a 1-based page number and the total
// row count. Pages below 1 are clamped to 1.
func NewPagination(page, totalRecords int) Pagination {
	if page < 1 {
		page = 1
	}
	return Pagination{
		Page:         page,
		PageSize:     PageSize,
		TotalRecords: totalRecords,
		HasPrevious:  page > 1,
		HasNext:      page*PageSize < totalRecords,
	}
}

// Offset returns the row offset of the page's first record.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// BuildCallQuery assembles the row query, the matching count query, and the
// bound filter arguments. The count query applies the same predicates but no
// ordering or paging. Sort inputs are validated against the allow-list here,
// before query construction; filter values only ever travel as bound
// parameters.
func BuildCallQuery(filter CallFilter, sortBy, order string, page Pagination) (string, string, []interface{}) {
	sortBy, order = NormalizeCallSort(sortBy, order)

	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.PhoneNumber != "" {
		where += " AND ZADDRESS = ?"
		args = append(args, filter.PhoneNumber)
	}
	if filter.CallType != 0 {
		where += " AND ZCALLTYPE = ?"
		args = append(args, filter.CallType)
	}
	if filter.Date != "" {
		// ZDATE is seconds since the Apple epoch; shift to Unix seconds so
		// DATE() can extract the calendar date.
		where += fmt.Sprintf(" AND DATE(ZDATE + %d, 'unixepoch') = ?", AppleEpochUnix)
		args = append(args, filter.Date)
	}

	query := fmt.Sprintf(`
		SELECT ZADDRESS, ZCALLTYPE, ZDATE, ZDURATION,
		       COALESCE(ZNAME, ''), COALESCE(ZSERVICE_PROVIDER, ''), COALESCE(ZISO_COUNTRY_CODE, '')
		FROM ZCALLRECORD
		%s
		ORDER BY %s %s
		LIMIT %d OFFSET %d
	`, where, callSortColumns[sortBy], order, page.PageSize, page.Offset())

	countQuery := "SELECT COUNT(*) FROM ZCALLRECORD " + where

	return query, countQuery, args
}

// GetCallRecords runs the count and row queries for one page of the call view
// and resolves a display label for each row through the request's ContactCache.
func GetCallRecords(callDB *sql.DB, cache *ContactCache, filter CallFilter, sortBy, order string, page int) ([]CallRecord, Pagination, error) {
	sortBy, order = NormalizeCallSort(sortBy, order)

	var totalRecords int
	_, countQuery, args := BuildCallQuery(filter, sortBy, order, NewPagination(page, 0))
	if err := callDB.QueryRow(countQuery, args...).Scan(&totalRecords); err != nil {
		return nil, Pagination{}, fmt.Errorf("count call records: %w", err)
	}

	pagination := NewPagination(page, totalRecords)
	query, _, args := BuildCallQuery(filter, sortBy, order, pagination)

	slog.Debug("GetCallRecords: executing query", "sort_by", sortBy, "order", order, "page", pagination.Page, "total", totalRecords)

	rows, err := callDB.Query(query, args...)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("query call records: %w", err)
	}
	defer rows.Close()

	records := []CallRecord{}
	for rows.Next() {
		var r CallRecord
		var zdate int64
		var duration sql.NullInt64
		err := rows.Scan(&r.Address, &r.CallType, &zdate, &duration,
			&r.Name, &r.ServiceProvider, &r.CountryCode)
		if err != nil {
			return nil, Pagination{}, fmt.Errorf("scan call record: %w", err)
		}

		r.Duration = int(duration.Int64)
		r.CallDate = FromAppleSeconds(zdate)
		r.Date = FormatDate(r.CallDate)
		r.Time = FormatTime(r.CallDate)
		r.CallTypeLabel = FormatCallType(r.CallType)

		r.DisplayLabel, err = cache.DisplayLabel(r.Address)
		if err != nil {
			return nil, Pagination{}, err
		}

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, Pagination{}, fmt.Errorf("iterate call records: %w", err)
	}

	return records, pagination, nil
}

// ComputeCallStats aggregates all-time statistics for a single phone number.
// No date or type filters apply here; the view always shows lifetime totals.
// A number with no history yields a zero-valued struct, not an error.
func ComputeCallStats(callDB *sql.DB, phoneNumber string) (CallStatistics, error) {
	var stats CallStatistics

	err := callDB.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN ZCALLTYPE = 1 THEN 1 END),
			COUNT(CASE WHEN ZCALLTYPE = 2 THEN 1 END),
			COALESCE(SUM(CASE WHEN ZCALLTYPE = 1 THEN ZDURATION ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ZCALLTYPE = 2 THEN ZDURATION ELSE 0 END), 0)
		FROM ZCALLRECORD
		WHERE ZADDRESS = ?
	`, phoneNumber).Scan(
		&stats.TotalCalls,
		&stats.OutgoingCalls,
		&stats.IncomingCalls,
		&stats.TotalOutgoingDuration,
		&stats.TotalIncomingDuration,
	)
	if err != nil {
		return CallStatistics{}, fmt.Errorf("compute call stats for %q: %w", phoneNumber, err)
	}

	return stats, nil
}
