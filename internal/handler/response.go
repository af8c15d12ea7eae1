package handler

import (
	"net/http"

	"github.com/petcare/rfid-gateway/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}
