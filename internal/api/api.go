// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"paddock-api/internal/analyser"
	"paddock-api/internal/cache"
	"paddock-api/internal/export"
	"paddock-api/internal/logger"
	"paddock-api/internal/metrics"
	"paddock-api/internal/middleware"
	"paddock-api/internal/report"
	"paddock-api/internal/store"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartMemory = 8 << 20
)

var allowedExt = map[string]bool{".geojson": true, ".json": true}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 API_BASE 前缀
// 约束：st 为 nil 时 /stats 返回 404 且不记录上传；rc 为 nil 时不缓存报表；maxUpload 为请求体上限（字节）。
func BuildRoutes(st *store.Store, rc cache.Cache, maxUpload int64) *http.ServeMux {
	h := &uploadHandler{st: st, rc: rc, maxUpload: maxUpload}
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusBody{Status: "ok"})
	})
	apiMux.Handle("/upload", h)
	apiMux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeError(w, http.StatusNotFound, "Statistics are not enabled")
			return
		}
		t, err := st.GetTotals(r.Context())
		if err != nil {
			logger.L().Error("stats_read_error", "err", err)
			writeError(w, http.StatusInternalServerError, "Failed to read statistics")
			return
		}
		writeJSON(w, http.StatusOK, statsBody{
			Uploads:       t.Uploads,
			Features:      t.Features,
			TodayUploads:  t.TodayUploads,
			TodayFeatures: t.TodayFeatures,
		})
	})
	return apiMux
}

// 文档注释：在 mux 上挂载根路由、API 路由与指标
// 约束：apiBase 不以 "/" 结尾，例如 "/api"。
func Mount(mux *http.ServeMux, apiBase string, st *store.Store, rc cache.Cache, maxUpload int64) {
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, BuildRoutes(st, rc, maxUpload)))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, http.StatusOK, rootBody{Message: "Loam Paddock Analyser API", Status: "running"})
	})
}

type uploadHandler struct {
	st        *store.Store
	rc        cache.Cache
	maxUpload int64
}

// 文档注释：上传 GeoJSON 并返回分析报表
// 背景：multipart 字段 file；按内容哈希命中缓存时跳过计算；?format=xlsx 返回工作簿。
// 约束：扩展名仅限 .geojson/.json；JSON 无法解码或不是 FeatureCollection 返回 400；计算缺陷返回 500。
func (h *uploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	start := time.Now()
	l := logger.L().With("request_id", middleware.RequestIDFrom(r.Context()))
	result := "ok"
	defer func() {
		metrics.UploadsTotal.WithLabelValues(result).Inc()
		metrics.UploadDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		result = "bad_request"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	file, hdr, err := r.FormFile("file")
	if err != nil {
		result = "bad_request"
		writeError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()
	if !allowedExt[strings.ToLower(filepath.Ext(hdr.Filename))] {
		result = "bad_request"
		writeError(w, http.StatusBadRequest, "Please upload a .geojson or .json file")
		return
	}
	body, err := io.ReadAll(file)
	if err != nil {
		result = "bad_request"
		writeError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		return
	}
	metrics.UploadBytes.Observe(float64(len(body)))

	key := cache.Key(body)
	var payload []byte
	cached := false
	if h.rc != nil {
		payload, cached = h.rc.Get(r.Context(), key)
	}
	var resp report.Response
	if cached {
		if err := json.Unmarshal(payload, &resp); err != nil {
			l.Warn("report_cache_corrupt", "key", key, "err", err)
			cached = false
		}
	}
	if !cached {
		status, detail := h.analyse(body, &resp)
		if status != http.StatusOK {
			if status >= http.StatusInternalServerError {
				result = "error"
			} else {
				result = "bad_request"
			}
			l.Info("upload_rejected", "filename", hdr.Filename, "status", status, "detail", detail)
			writeError(w, status, detail)
			return
		}
		payload, err = json.Marshal(resp)
		if err != nil {
			result = "error"
			l.Error("report_encode_error", "err", err)
			writeError(w, http.StatusInternalServerError, "Failed to encode report")
			return
		}
		if h.rc != nil {
			h.rc.Set(r.Context(), key, payload)
		}
	}
	l.Info("upload_done",
		"filename", hdr.Filename,
		"bytes", len(body),
		"features", resp.Summary.TotalPaddocks,
		"projects", resp.Summary.TotalProjects,
		"cached", cached,
	)
	h.record(r, hdr.Filename, len(body), resp, cached)

	if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
		b, err := export.Workbook(resp)
		if err != nil {
			result = "error"
			l.Error("export_xlsx_error", "err", err)
			writeError(w, http.StatusInternalServerError, "Failed to build workbook")
			return
		}
		base := strings.TrimSuffix(filepath.Base(hdr.Filename), filepath.Ext(hdr.Filename))
		w.Header().Set("content-type", xlsxContentType)
		w.Header().Set("content-disposition", `attachment; filename="`+base+`_report.xlsx"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(b)
		return
	}
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

// analyse 解码并计算报表，返回 HTTP 状态与错误文本
func (h *uploadHandler) analyse(body []byte, out *report.Response) (int, string) {
	fc, err := analyser.DecodeCollection(body)
	if err != nil {
		var se *analyser.SyntaxError
		switch {
		case errors.As(err, &se):
			return http.StatusBadRequest, "Invalid JSON: " + se.Detail
		case errors.Is(err, analyser.ErrNotFeatureCollection):
			return http.StatusBadRequest, "Expected a GeoJSON FeatureCollection"
		default:
			return http.StatusBadRequest, err.Error()
		}
	}
	rep, err := analyser.Analyse(fc)
	if err != nil {
		logger.L().Error("analyse_error", "err", err)
		return http.StatusInternalServerError, "Failed to process features"
	}
	*out = report.FromAnalysis(rep)
	return http.StatusOK, ""
}

func (h *uploadHandler) record(r *http.Request, filename string, size int, resp report.Response, cached bool) {
	if h.st == nil {
		return
	}
	err := h.st.RecordUpload(r.Context(), store.Upload{
		Filename:   filename,
		Bytes:      int64(size),
		Features:   resp.Summary.TotalPaddocks,
		Groups:     resp.Summary.TotalProjects,
		Invalid:    resp.Summary.InvalidPaddocks,
		GeodesicM2: resp.Summary.TotalAreaGeodesicM2,
		Cached:     cached,
	})
	if err != nil {
		logger.L().Warn("stats_record_error", "err", err)
	}
}
