package store

import "context"

// InsertVisit records a visit-day for an address. It returns false when
// the pair was already present.
func (s *Store) InsertVisit(ctx context.Context, ipAddress, visitDate string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (ip_address, visit_date) VALUES ($1, $2)
		ON CONFLICT (ip_address, visit_date) DO NOTHING`,
		ipAddress, visitDate)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountVisitors returns the number of visit-days recorded
func (s *Store) CountVisitors(ctx context.Context) (int64, error) {
	return s.countRows(ctx, "visitors")
}
