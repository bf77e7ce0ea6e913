// Package server 对外提供历史报告的 HTTP 查询接口。
package server

import (
	"encoding/json"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/iWorld-y/topic_radar/pkg/config"
	"github.com/iWorld-y/topic_radar/pkg/logger"
	"github.com/iWorld-y/topic_radar/pkg/render"
	"github.com/iWorld-y/topic_radar/pkg/storage"
)

// NewHTTPServer 构造 HTTP 服务，路由挂在 Storage 之上
func NewHTTPServer(cfg config.ServerConfig, store *storage.Storage) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Timeout(30 * time.Second),
	}
	if cfg.Addr != "" {
		opts = append(opts, http.Address(cfg.Addr))
	}

	srv := http.NewServer(opts...)

	srv.HandleFunc("/api/reports", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		runs, err := store.ListRuns(limit)
		if err != nil {
			writeError(w, nethttp.StatusInternalServerError, err)
			return
		}
		writeJSON(w, runs)
	})

	srv.HandleFunc("/api/report", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			writeError(w, nethttp.StatusBadRequest, err)
			return
		}
		report, err := store.GetReport(id)
		if err != nil {
			writeError(w, nethttp.StatusNotFound, err)
			return
		}
		writeJSON(w, report)
	})

	srv.HandleFunc("/api/report/markdown", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			writeError(w, nethttp.StatusBadRequest, err)
			return
		}
		report, err := store.GetReport(id)
		if err != nil {
			writeError(w, nethttp.StatusNotFound, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(render.Markdown(report)))
	})

	return srv
}

func writeJSON(w nethttp.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorf("写入响应失败: %v", err)
	}
}

func writeError(w nethttp.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
