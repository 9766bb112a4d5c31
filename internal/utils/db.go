// 包 utils：PostgreSQL 连接工具，统一环境变量读取与连接池参数
package utils

import (
	"database/sql"
	"net/url"
	"os"
	"strconv"

	_ "github.com/lib/pq"

	"paddock-api/internal/logger"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt 读取整数环境变量，缺失或解析失败时返回默认值
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// BuildPostgresDSNFromEnv：由 PG_* 环境变量拼装 DSN；密码做 URL 转义
func BuildPostgresDSNFromEnv() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   envOr("PG_HOST", "localhost") + ":" + envOr("PG_PORT", "5432"),
		Path:   "/" + envOr("PG_DB", "paddock"),
	}
	user := envOr("PG_USER", "postgres")
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(user, pass)
	} else {
		u.User = url.User(user)
	}
	u.RawQuery = "sslmode=" + envOr("PG_SSLMODE", "disable")
	return u.String()
}

// OpenPostgresFromEnv：打开连接池（不立即建连），连接数取 PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS
func OpenPostgresFromEnv() (*sql.DB, error) {
	dsn := BuildPostgresDSNFromEnv()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	maxOpen := EnvInt("PG_MAX_OPEN_CONNS", 10)
	maxIdle := EnvInt("PG_MAX_IDLE_CONNS", 5)
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	logger.L().Debug("pg_env", "host", envOr("PG_HOST", "localhost"), "db", envOr("PG_DB", "paddock"), "max_open", maxOpen)
	return db, nil
}
