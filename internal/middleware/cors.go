package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"

	"paddock-api/internal/logger"
)

// 前端开发服务器的默认来源
var defaultOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"}

// 文档注释：CORS 中间件
// 约束：origins 为空时使用默认开发来源；"*" 允许任意来源但不携带凭据。
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultOrigins
	}
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition"},
		AllowCredentials: !allowAll,
		MaxAge:           600,
	})
	return c.Handler
}

// CORSFromEnv 读取逗号分隔的 CORS_ORIGINS
func CORSFromEnv() func(http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	logger.L().Debug("cors_origins", "origins", origins)
	return CORS(origins)
}
