package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/devprompt93/clean-scan/internal/cities"
	"github.com/devprompt93/clean-scan/internal/models"
	"github.com/devprompt93/clean-scan/internal/snapshot"
	"github.com/devprompt93/clean-scan/internal/store"

	"github.com/google/uuid"
)

type Handler struct {
	store store.DataStore
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	SessionID string      `json:"sessionId"`
	User      models.User `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	City     string `json:"city"`
}

type toggleRequest struct {
	ProviderID string `json:"providerId"`
	ToiletID   string `json:"toiletId"`
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(store store.DataStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)
	mux.HandleFunc("/api/auth/me", h.handleMe)
	mux.HandleFunc("/api/toilets", h.handleToilets)
	mux.HandleFunc("/api/toilets/", h.handleToiletByID)
	mux.HandleFunc("/api/providers/", h.handleProviderToilets)
	mux.HandleFunc("/api/cleanings", h.handleCleanings)
	mux.HandleFunc("/api/cleanings/pending", h.handlePendingCleanings)
	mux.HandleFunc("/api/users", h.handleUsers)
	mux.HandleFunc("/api/users/", h.handleUserByID)
	mux.HandleFunc("/api/assignments", h.handleAssignments)
	mux.HandleFunc("/api/assignments/toggle", h.handleToggleAssignment)
	mux.HandleFunc("/api/assignments/save", h.handleSaveAssignments)
	mux.HandleFunc("/api/registrations", h.handleRegistrations)
	mux.HandleFunc("/api/registrations/", h.handleRegistrationActions)
	mux.HandleFunc("/api/cities", h.handleCities)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, err := h.store.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		SessionID: uuid.NewString(),
		User:      sanitizeUser(user),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := h.store.Logout(r.Context()); err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, found, err := h.store.CurrentUser(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	if !found {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "no active session")
		return
	}
	writeJSON(w, http.StatusOK, sanitizeUser(user))
}

func (h *Handler) handleToilets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		force := r.URL.Query().Get("force") == "true"
		toilets, err := h.store.Toilets(r.Context(), force)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, toilets)
	case http.MethodPost:
		var toilet models.Toilet
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&toilet); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		toilet.ID = ""
		if !validateToilet(w, r, &toilet) {
			return
		}
		saved, err := h.store.SaveToilet(r.Context(), toilet)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleToiletByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/toilets/"), "/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		toilet, found, err := h.store.Toilet(r.Context(), id)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		if !found {
			writeError(w, r, http.StatusNotFound, "toilet_not_found", "toilet not found")
			return
		}
		writeJSON(w, http.StatusOK, toilet)
	case http.MethodPut:
		var toilet models.Toilet
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&toilet); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		toilet.ID = id
		if !validateToilet(w, r, &toilet) {
			return
		}
		saved, err := h.store.SaveToilet(r.Context(), toilet)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleProviderToilets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/providers/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[1] != "toilets" || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	toilets, err := h.store.ToiletsForProvider(r.Context(), parts[0])
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	if toilets == nil {
		toilets = []models.Toilet{}
	}
	writeJSON(w, http.StatusOK, toilets)
}

func (h *Handler) handleCleanings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		force := r.URL.Query().Get("force") == "true"
		cleanings, err := h.store.Cleanings(r.Context(), force)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, cleanings)
	case http.MethodPost:
		var cleaning models.Cleaning
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cleaning); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		cleaning.ToiletID = strings.TrimSpace(cleaning.ToiletID)
		cleaning.ProviderID = strings.TrimSpace(cleaning.ProviderID)
		if cleaning.ToiletID == "" || cleaning.ProviderID == "" {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "toiletId and providerId are required")
			return
		}
		result, err := h.store.SubmitCleaning(r.Context(), cleaning)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		// 202 tells the caller the record is parked for later delivery.
		status := http.StatusOK
		if result.Queued {
			status = http.StatusAccepted
		}
		writeJSON(w, status, result)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePendingCleanings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	pending, err := h.store.PendingCleanings(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	if pending == nil {
		pending = []models.Cleaning{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodGet:
		force := r.URL.Query().Get("force") == "true"
		users, err := h.store.Users(r.Context(), force)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		out := make([]models.User, 0, len(users))
		for _, u := range users {
			out = append(out, sanitizeUser(u))
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var user models.User
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&user); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		user.ID = ""
		if !validateUser(w, r, &user) {
			return
		}
		saved, err := h.store.SaveUser(r.Context(), user)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		writeJSON(w, http.StatusCreated, sanitizeUser(saved))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/users/"), "/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	switch r.Method {
	case http.MethodPut:
		var user models.User
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&user); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		user.ID = id
		if !validateUser(w, r, &user) {
			return
		}
		saved, err := h.store.SaveUser(r.Context(), user)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, sanitizeUser(saved))
	case http.MethodDelete:
		if err := h.store.DeleteUser(r.Context(), id); err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAssignments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	assignments, err := h.store.Assignments(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	if assignments == nil {
		assignments = models.Assignments{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *Handler) handleToggleAssignment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	var req toggleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.ProviderID = strings.TrimSpace(req.ProviderID)
	req.ToiletID = strings.TrimSpace(req.ToiletID)
	if req.ProviderID == "" || req.ToiletID == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "providerId and toiletId are required")
		return
	}

	assignments, err := h.store.ToggleAssignment(r.Context(), req.ProviderID, req.ToiletID)
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *Handler) handleSaveAssignments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	var assignments models.Assignments
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&assignments); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	if assignments == nil {
		assignments = models.Assignments{}
	}

	if err := h.store.SaveAssignments(r.Context(), assignments); err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

// handleRegistrations serves the public sign-up form on POST and the admin
// review list on GET.
func (h *Handler) handleRegistrations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !h.requireAdmin(w, r) {
			return
		}
		pending, err := h.store.PendingRegistrations(r.Context())
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		out := make([]models.Registration, 0, len(pending))
		for _, reg := range pending {
			reg.Password = ""
			out = append(out, reg)
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var req registerRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		req.Password = strings.TrimSpace(req.Password)
		req.City = strings.TrimSpace(req.City)
		if req.Name == "" || req.Email == "" || req.Password == "" || req.City == "" {
			writeError(w, r, http.StatusBadRequest, "invalid_request", "name, email, password, and city are required")
			return
		}

		reg, err := h.store.Register(r.Context(), models.Registration{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			City:     req.City,
		})
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		reg.Password = ""
		writeJSON(w, http.StatusCreated, reg)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleRegistrationActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.requireAdmin(w, r) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/registrations/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	id := parts[0]
	switch parts[1] {
	case "approve":
		user, err := h.store.ApproveRegistration(r.Context(), id)
		if err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		writeJSON(w, http.StatusOK, sanitizeUser(user))
	case "reject":
		if err := h.store.RejectRegistration(r.Context(), id); err != nil {
			status, code, msg := mapError(err)
			writeError(w, r, status, code, msg)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleCities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city != "" {
		areas := cities.AreasForCity(city)
		if areas == nil {
			areas = []string{}
		}
		writeJSON(w, http.StatusOK, areas)
		return
	}
	writeJSON(w, http.StatusOK, cities.SACities)
}

// requireAdmin gates management endpoints on the session user's role.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	user, found, err := h.store.CurrentUser(r.Context())
	if err != nil {
		status, code, msg := mapError(err)
		writeError(w, r, status, code, msg)
		return false
	}
	if !found {
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "no active session")
		return false
	}
	if user.Role != models.RoleAdmin {
		writeError(w, r, http.StatusForbidden, "access_denied", "admin role required")
		return false
	}
	return true
}

func validateToilet(w http.ResponseWriter, r *http.Request, toilet *models.Toilet) bool {
	toilet.Name = strings.TrimSpace(toilet.Name)
	toilet.Area = strings.TrimSpace(toilet.Area)
	if toilet.Name == "" || toilet.Area == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "name and area are required")
		return false
	}
	return true
}

func validateUser(w http.ResponseWriter, r *http.Request, user *models.User) bool {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	user.Role = strings.TrimSpace(user.Role)
	user.City = strings.TrimSpace(user.City)
	if user.Name == "" || user.Role == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "name and role are required")
		return false
	}
	if user.Role != models.RoleProvider && user.Role != models.RoleAdmin {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "role must be provider or admin")
		return false
	}
	if user.Role == models.RoleProvider && user.City == "" {
		writeError(w, r, http.StatusBadRequest, "invalid_request", "city is required for providers")
		return false
	}
	return true
}

func sanitizeUser(user models.User) models.User {
	user.Password = ""
	return user
}

func mapError(err error) (int, string, string) {
	var fetchErr *snapshot.FetchError
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid credentials"
	case errors.Is(err, store.ErrToiletNotFound):
		return http.StatusNotFound, "toilet_not_found", "toilet not found"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "user not found"
	case errors.Is(err, store.ErrRegistrationNotFound):
		return http.StatusNotFound, "registration_not_found", "registration not found"
	case errors.Is(err, store.ErrDuplicateAssignment):
		return http.StatusConflict, "duplicate_assignment", "toilet assigned to more than one provider"
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "upstream_unavailable", "remote snapshot fetch failed"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: r.Header.Get("X-Request-ID"),
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
