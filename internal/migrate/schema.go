package migrate

import (
	"database/sql"

	"paddock-api/internal/logger"
)

// 背景：首次运行自动创建统计所需表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _paddock_uploads (
            id UUID PRIMARY KEY,
            filename TEXT NOT NULL,
            bytes BIGINT NOT NULL,
            features INT NOT NULL,
            groups INT NOT NULL,
            invalid INT NOT NULL,
            geodesic_m2 DOUBLE PRECISION NOT NULL,
            cached BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_paddock_uploads_created ON _paddock_uploads(created_at)`,
		`CREATE TABLE IF NOT EXISTS _paddock_stats_total (
            id INT PRIMARY KEY,
            total_uploads BIGINT NOT NULL DEFAULT 0,
            total_features BIGINT NOT NULL DEFAULT 0
        )`,
		`CREATE TABLE IF NOT EXISTS _paddock_stats_daily (
            day DATE PRIMARY KEY,
            uploads BIGINT NOT NULL DEFAULT 0,
            features BIGINT NOT NULL DEFAULT 0
        )`,
		`INSERT INTO _paddock_stats_total(id, total_uploads, total_features)
         VALUES(1, 0, 0)
         ON CONFLICT (id) DO NOTHING`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
