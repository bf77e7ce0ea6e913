// Package storage 提供报告的 PostgreSQL 持久化，供服务端回看历史调研。
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iWorld-y/topic_radar/pkg/config"
	dm "github.com/iWorld-y/topic_radar/pkg/model"
	_ "github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

// RunSummary 历史调研的列表视图
type RunSummary struct {
	ID         int    `json:"id"`
	Topic      string `json:"topic"`
	RangeFrom  string `json:"range_from"`
	RangeTo    string `json:"range_to"`
	Mode       string `json:"mode"`
	TotalItems int    `json:"total_items"`
	CreatedAt  string `json:"created_at"`
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	query := `CREATE TABLE IF NOT EXISTS research_runs (
		id SERIAL PRIMARY KEY,
		topic TEXT NOT NULL,
		range_from TEXT,
		range_to TEXT,
		mode TEXT,
		model_used TEXT,
		total_items INTEGER,
		report JSONB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// SaveReport 保存完整报告，返回运行 ID
func (s *Storage) SaveReport(report *dm.Report) (int, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	totalItems := 0
	if report.DataQuality != nil {
		totalItems = report.DataQuality.TotalItems
	}

	var id int
	err = s.db.QueryRow(
		`INSERT INTO research_runs (topic, range_from, range_to, mode, model_used, total_items, report)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		report.Topic, report.Range.From, report.Range.To, report.Mode, report.ModelUsed,
		totalItems, removeNullBytes(string(data)),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}
	return id, nil
}

// ListRuns 按时间倒序列出历史调研
func (s *Storage) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, topic, range_from, range_to, mode, total_items, created_at::text
		 FROM research_runs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Topic, &r.RangeFrom, &r.RangeTo, &r.Mode, &r.TotalItems, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetReport 读取指定运行的完整报告
func (s *Storage) GetReport(id int) (*dm.Report, error) {
	var data []byte
	err := s.db.QueryRow(`SELECT report FROM research_runs WHERE id = $1`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("report %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}

	var report dm.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}

// PostgreSQL 文本字段不支持 NULL 字节
func removeNullBytes(s string) string {
	return strings.ReplaceAll(s, "\x00", "")
}
