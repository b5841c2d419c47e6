package store

import "fmt"

// MarkProcessed 접수번호를 처리 완료로 기록한다. 이미 있으면 덮어쓴다.
func (s *Store) MarkProcessed(rceptNo, reportNm, rceptDt, runID string) error {
	_, err := s.db.Exec(`
		INSERT INTO processed_reports (rcept_no, report_nm, rcept_dt, run_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(rcept_no) DO UPDATE SET
			run_id = excluded.run_id,
			processed_at = CURRENT_TIMESTAMP
	`, rceptNo, reportNm, rceptDt, runID)
	if err != nil {
		return fmt.Errorf("처리 기록 실패: %w", err)
	}
	return nil
}

// IsProcessed 접수번호가 이미 처리됐는지
func (s *Store) IsProcessed(rceptNo string) (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM processed_reports WHERE rcept_no = ?
	`, rceptNo).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("처리 여부 조회 실패: %w", err)
	}
	return n > 0, nil
}
