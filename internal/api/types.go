package api

import (
	"encoding/json"
	"net/http"
)

type CreateSessionRequest struct {
	Flow string `json:"flow"`
}

type SessionResponse struct {
	SessionID string `json:"sessionId"`
	Flow      string `json:"flow"`
	State     string `json:"state"`
}

type SelectSlotRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type SubmitRequest struct {
	Answers map[string]string `json:"answers"`
}

type BookingRequest struct {
	Flow    string            `json:"flow"`
	Date    string            `json:"date"`
	Time    string            `json:"time"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Phone   string            `json:"phone"`
	Company string            `json:"company"`
	Answers map[string]string `json:"answers"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type AdminActionRequest struct {
	Action  string `json:"action"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	NewDate string `json:"newDate"`
	NewTime string `json:"newTime"`
	Confirm bool   `json:"confirm"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
