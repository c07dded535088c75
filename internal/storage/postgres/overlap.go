// internal/storage/postgres/overlap.go
package postgres

import "dressrental/internal/calendar"

// overlapPredicate matches rows whose reservation_periods JSONB array holds a period
// overlapping [$1, $2]. The four branches cover a stored period contained in the query,
// starting inside it, ending inside it, and encompassing it. Bounds are inclusive.
const overlapPredicate = `EXISTS (
	SELECT 1
	FROM jsonb_array_elements(reservation_periods) AS rp
	WHERE ((rp->>'startDate')::timestamptz >= $1 AND (rp->>'endDate')::timestamptz <= $2)
	   OR ((rp->>'startDate')::timestamptz <= $1 AND (rp->>'endDate')::timestamptz >= $1)
	   OR ((rp->>'startDate')::timestamptz <= $2 AND (rp->>'endDate')::timestamptz >= $2)
	   OR ((rp->>'startDate')::timestamptz <= $1 AND (rp->>'endDate')::timestamptz >= $2)
)`

// containsPredicate matches rows with a reservation period containing $1.
const containsPredicate = `EXISTS (
	SELECT 1
	FROM jsonb_array_elements(reservation_periods) AS rp
	WHERE (rp->>'startDate')::timestamptz <= $1 AND (rp->>'endDate')::timestamptz >= $1
)`

// overlapCases evaluates overlapPredicate in Go for a stored period and a query period.
func overlapCases(stored, query calendar.Period) bool {
	s, e := stored.StartDate(), stored.EndDate()
	qs, qe := query.StartDate(), query.EndDate()

	contained := !s.Before(qs) && !e.After(qe)
	startsBefore := !s.After(qs) && !e.Before(qs)
	endsAfter := !s.After(qe) && !e.Before(qe)
	encompassing := !s.After(qs) && !e.Before(qe)

	return contained || startsBefore || endsAfter || encompassing
}
