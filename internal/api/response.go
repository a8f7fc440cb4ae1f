package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type responseType string

const (
	responseTypeObject responseType = "object"
	responseTypeArray  responseType = "array"
)

// envelope is the shape every successful response shares.
type envelope struct {
	ResponseType responseType `json:"response_type"`
	Object       any          `json:"object,omitempty"`
	Array        any          `json:"array,omitempty"`
	Meta         any          `json:"meta,omitempty"`
}

type listMeta struct {
	Count   int    `json:"count"`
	Address string `json:"address,omitempty"`
}

func writeBody(w http.ResponseWriter, body any) {
	writeJSON(w, http.StatusOK, envelope{ResponseType: responseTypeObject, Object: body})
}

func writeList(w http.ResponseWriter, list any, meta any) {
	writeJSON(w, http.StatusOK, envelope{ResponseType: responseTypeArray, Array: list, Meta: meta})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
