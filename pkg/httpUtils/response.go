package http_utils

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Error   bool        `json:"error"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Success writes a 200 response carrying data.
func Success(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Response{Data: data})
}

// Accepted writes a 202 response for work handed to the event loop.
func Accepted(w http.ResponseWriter, message string, data interface{}) error {
	return WriteJSON(w, http.StatusAccepted, Response{Message: message, Data: data})
}

// Fail writes an error response with the given status code.
func Fail(w http.ResponseWriter, status int, message string) error {
	return WriteJSON(w, status, Response{Error: true, Message: message})
}

// ReadJSON decodes the request body into v, rejecting unknown fields.
func ReadJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
