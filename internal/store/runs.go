package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nygula/Taoda/internal/errors"
	"github.com/nygula/Taoda/internal/model"
)

// DefaultListLimit ListRuns 的默认条数
const DefaultListLimit = 20

// CreateRun 记录一次开始的批量生成，返回 run id
func (s *Store) CreateRun(templatePath, sourcePath, outputDir string, total int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO generation_runs (id, template_path, source_path, output_dir, total, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, templatePath, sourcePath, outputDir, total, model.RunStatusRunning, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to create generation run: %w", err)
	}
	return id, nil
}

// CompleteRun 写入生成结果和失败明细
func (s *Store) CompleteRun(id string, outcome *model.BatchOutcome, runErr error) error {
	if outcome == nil {
		outcome = &model.BatchOutcome{}
	}
	status := model.StatusOf(outcome, runErr)
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE generation_runs SET
			succeeded = ?,
			failed = ?,
			status = ?,
			error_message = ?,
			completed_at = ?
		WHERE id = ?
	`, outcome.Succeeded, outcome.Failed(), status, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update generation run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewNotFoundError("generation run", id)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO generation_failures (run_id, record_index, file_name, error)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare failure insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range outcome.Failures {
		if _, err := stmt.Exec(id, f.Index, f.FileName, f.Error); err != nil {
			return fmt.Errorf("failed to record failure %d: %w", f.Index, err)
		}
	}

	return tx.Commit()
}

// ListRuns 按开始时间倒序列出最近的生成记录（不含失败明细）
func (s *Store) ListRuns(limit int) ([]model.GenerationRun, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(`
		SELECT id, template_path, source_path, output_dir, total, succeeded, failed,
		       status, error_message, started_at, completed_at
		FROM generation_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generation runs: %w", err)
	}
	defer rows.Close()

	runs := []model.GenerationRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun 读取单条生成记录及其失败明细
func (s *Store) GetRun(id string) (*model.GenerationRun, error) {
	row := s.db.QueryRow(`
		SELECT id, template_path, source_path, output_dir, total, succeeded, failed,
		       status, error_message, started_at, completed_at
		FROM generation_runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("generation run", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT record_index, file_name, error
		FROM generation_failures
		WHERE run_id = ?
		ORDER BY record_index
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query failures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f model.RecordFailure
		if err := rows.Scan(&f.Index, &f.FileName, &f.Error); err != nil {
			return nil, fmt.Errorf("failed to scan failure: %w", err)
		}
		run.Failures = append(run.Failures, f)
	}
	return run, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*model.GenerationRun, error) {
	var (
		run       model.GenerationRun
		status    string
		completed sql.NullTime
	)
	err := sc.Scan(&run.ID, &run.TemplatePath, &run.SourcePath, &run.OutputDir,
		&run.Total, &run.Succeeded, &run.Failed, &status, &run.ErrorMessage,
		&run.StartedAt, &completed)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan generation run: %w", err)
	}
	run.Status = model.RunStatus(status)
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
