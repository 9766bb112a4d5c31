// 包 store: 提供与 PostgreSQL 的数据访问层，记录上传批次并维护累计/当日统计
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"paddock-api/internal/logger"
)

// Store: 数据库访问入口，持有连接池并提供统计读写接口
type Store struct {
	db *sql.DB
}

// AttachDB: 包装已配置好连接池的 *sql.DB（见 utils.OpenPostgresFromEnv）
func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

// Upload: 一次上传的处理摘要（不保存几何与属性原文）
type Upload struct {
	ID         uuid.UUID
	Filename   string
	Bytes      int64
	Features   int
	Groups     int
	Invalid    int
	GeodesicM2 float64
	Cached     bool
	At         time.Time
}

// 文档注释：记录一次上传并递增累计与当日计数
// 背景：统计只服务于运维观测，写入失败由调用方记录日志，不影响上传响应。
// 约束：ID 为空时自动生成；面积以全精度写入。
func (s *Store) RecordUpload(ctx context.Context, u Upload) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.At.IsZero() {
		u.At = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO _paddock_uploads(id, filename, bytes, features, groups, invalid, geodesic_m2, cached, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID.String(), u.Filename, u.Bytes, u.Features, u.Groups, u.Invalid, u.GeodesicM2, u.Cached, u.At,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE _paddock_stats_total SET total_uploads=total_uploads+1, total_features=total_features+$1 WHERE id=1`,
		u.Features,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO _paddock_stats_daily(day, uploads, features) VALUES(current_date, 1, $1)
		 ON CONFLICT (day) DO UPDATE SET uploads=_paddock_stats_daily.uploads+1, features=_paddock_stats_daily.features+$1`,
		u.Features,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	logger.L().Debug("stats_upload_recorded", "upload_id", u.ID.String(), "features", u.Features, "cached", u.Cached)
	return nil
}

// Totals: 统计返回结构，包含累计与当日上传次数及要素数
type Totals struct {
	Uploads       int64
	Features      int64
	TodayUploads  int64
	TodayFeatures int64
}

// GetTotals: 读取累计与当日统计，用于接口返回；当日无记录时为 0
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	row := s.db.QueryRowContext(ctx, "SELECT total_uploads, total_features FROM _paddock_stats_total WHERE id=1")
	if err := row.Scan(&t.Uploads, &t.Features); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	row2 := s.db.QueryRowContext(ctx, "SELECT uploads, features FROM _paddock_stats_daily WHERE day=current_date")
	if err := row2.Scan(&t.TodayUploads, &t.TodayFeatures); err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	logger.L().Debug("stats_totals", "uploads", t.Uploads, "today", t.TodayUploads)
	return &t, nil
}
