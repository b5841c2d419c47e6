package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run 갱신 작업 한 번의 기록
type Run struct {
	ID            string
	Quarter       string
	TargetColumn  string
	ResolvedCount int
	SkippedCount  int
	Status        string
	ErrorMessage  string
	StartedAt     time.Time
	CompletedAt   *time.Time
}

// 작업 상태 값
const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// CreateRun 작업 시작을 기록하고 작업 ID를 돌려준다
func (s *Store) CreateRun(quarter string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, quarter, status)
		VALUES (?, ?, ?)
	`, id, quarter, RunStatusRunning)
	if err != nil {
		return "", fmt.Errorf("작업 기록 생성 실패: %w", err)
	}
	return id, nil
}

// CompleteRun 작업 종료를 기록한다
func (s *Store) CompleteRun(id, targetColumn string, resolved, skipped int, status, errMsg string) error {
	_, err := s.db.Exec(`
		UPDATE runs SET
			target_column = ?,
			resolved_count = ?,
			skipped_count = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, targetColumn, resolved, skipped, status, errMsg, id)
	if err != nil {
		return fmt.Errorf("작업 기록 갱신 실패: %w", err)
	}
	return nil
}

// RecentRuns 최근 작업을 최신순으로 가져온다
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, quarter, target_column, resolved_count, skipped_count,
		       status, error_message, started_at, completed_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("작업 이력 조회 실패: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var completed sql.NullTime
		if err := rows.Scan(&r.ID, &r.Quarter, &r.TargetColumn, &r.ResolvedCount,
			&r.SkippedCount, &r.Status, &r.ErrorMessage, &r.StartedAt, &completed); err != nil {
			return nil, fmt.Errorf("작업 이력 읽기 실패: %w", err)
		}
		if completed.Valid {
			t := completed.Time
			r.CompletedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
