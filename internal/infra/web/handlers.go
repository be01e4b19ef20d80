package web

import (
	"encoding/json"
	"net/http"
)

type guardResponse struct {
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

type deviceResponse struct {
	ID    string `json:"id"`
	Model string `json:"model,omitempty"`
	Name  string `json:"name,omitempty"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func guardHandler(guard GuardStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := guard.BuildStatus()
		writeJSON(w, http.StatusOK, guardResponse{Enabled: guard.Enabled(), Text: status.Text})
	}
}

func devicesHandler(devices DeviceLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := devices.Devices()
		out := make([]deviceResponse, 0, len(list))
		for _, d := range list {
			out = append(out, deviceResponse{ID: d.ID, Model: d.Model, Name: d.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
