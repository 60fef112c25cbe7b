package adminapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"tenantportal/pkg/content"
	"tenantportal/pkg/problems"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		problems.Write(w, http.StatusBadRequest, "bad-json", "Malformed request body", err.Error())
		return false
	}
	return true
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// valid runs the struct's validate tags and answers 400 on failure.
func valid(w http.ResponseWriter, v any) bool {
	if err := validate.Struct(v); err != nil {
		problems.Write(w, http.StatusBadRequest, "invalid-body", "Request body failed validation", err.Error())
		return false
	}
	return true
}

func itemID(w http.ResponseWriter, r *http.Request) (content.ID, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		problems.Write(w, http.StatusBadRequest, "bad-id", "Invalid item id", chi.URLParam(r, "id"))
		return 0, false
	}
	return id, true
}
