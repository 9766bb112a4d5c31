// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"paddock-api/internal/api"
	"paddock-api/internal/cache"
	"paddock-api/internal/logger"
	"paddock-api/internal/middleware"
	"paddock-api/internal/migrate"
	"paddock-api/internal/store"
	"paddock-api/internal/utils"
	"paddock-api/internal/version"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()
	l.Info("starting", "version", version.Version, "commit", version.Commit)

	apiBase := strings.TrimSuffix(os.Getenv("API_BASE"), "/")
	if apiBase == "" {
		apiBase = "/api"
	}
	l.Debug("config_api_base", "base", apiBase)
	maxUpload := int64(utils.EnvInt("UPLOAD_MAX_MB", 50)) << 20

	// 统计库为可选依赖：打开或建表失败只记录日志，上传功能不受影响
	var st *store.Store
	if os.Getenv("PG_ENABLE") == "true" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
		} else if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
			_ = db.Close()
		} else if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			_ = db.Close()
		} else {
			st = store.AttachDB(db)
			defer st.Close()
			l.Info("db_ready")
		}
	} else {
		l.Info("db_disabled")
	}

	ttl := time.Duration(utils.EnvInt("REPORT_CACHE_TTL_S", 3600)) * time.Second
	var rc cache.Cache
	if os.Getenv("REDIS_ENABLE") == "true" {
		client := utils.OpenRedisFromEnv()
		if err := client.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			_ = client.Close()
		} else {
			l.Info("redis_ping_ok")
			rc = cache.NewRedis(client, ttl)
			defer client.Close()
		}
	}
	if rc == nil {
		size := utils.EnvInt("REPORT_CACHE_SIZE", 64)
		if size > 0 {
			rc = cache.NewLRU(size, ttl)
			l.Info("report_cache_lru", "size", size, "ttl_s", int(ttl.Seconds()))
		}
	}

	mux := http.NewServeMux()
	api.Mount(mux, apiBase, st, rc, maxUpload)

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Shutdown(sctx); err != nil {
			l.Error("shutdown_error", "err", err)
		}
	}()

	var err error
	if os.Getenv("TLS_ENABLE") == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		if err := utils.EnsureSelfSignedCert(certPath, keyPath, "paddock-api.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		err = s.ListenAndServeTLS(certPath, keyPath)
	} else {
		l.Info("listening", "addr", addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}
