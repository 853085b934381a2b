package handler

import "net/http"

// Health はプロセスの稼働確認に応答する。
// GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
