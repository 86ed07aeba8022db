package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devprompt93/clean-scan/internal/models"
	"github.com/devprompt93/clean-scan/internal/queue"
	"github.com/devprompt93/clean-scan/internal/store"
)

type fakeStore struct {
	toiletsFn         func(ctx context.Context, force bool) ([]models.Toilet, error)
	toiletFn          func(ctx context.Context, id string) (models.Toilet, bool, error)
	saveToiletFn      func(ctx context.Context, toilet models.Toilet) (models.Toilet, error)
	providerToiletsFn func(ctx context.Context, providerID string) ([]models.Toilet, error)
	cleaningsFn       func(ctx context.Context, force bool) ([]models.Cleaning, error)
	submitFn          func(ctx context.Context, cleaning models.Cleaning) (queue.Result, error)
	pendingFn         func(ctx context.Context) ([]models.Cleaning, error)
	usersFn           func(ctx context.Context, force bool) ([]models.User, error)
	saveUserFn        func(ctx context.Context, user models.User) (models.User, error)
	deleteUserFn      func(ctx context.Context, id string) error
	assignmentsFn     func(ctx context.Context) (models.Assignments, error)
	toggleFn          func(ctx context.Context, providerID, toiletID string) (models.Assignments, error)
	saveAssignFn      func(ctx context.Context, assignments models.Assignments) error
	registerFn        func(ctx context.Context, reg models.Registration) (models.Registration, error)
	pendingRegsFn     func(ctx context.Context) ([]models.Registration, error)
	approveFn         func(ctx context.Context, id string) (models.User, error)
	rejectFn          func(ctx context.Context, id string) error
	loginFn           func(ctx context.Context, email, password string) (models.User, error)
	currentUserFn     func(ctx context.Context) (models.User, bool, error)
	logoutFn          func(ctx context.Context) error
}

func (f fakeStore) Toilets(ctx context.Context, force bool) ([]models.Toilet, error) {
	if f.toiletsFn == nil {
		return nil, nil
	}
	return f.toiletsFn(ctx, force)
}

func (f fakeStore) Toilet(ctx context.Context, id string) (models.Toilet, bool, error) {
	if f.toiletFn == nil {
		return models.Toilet{}, false, nil
	}
	return f.toiletFn(ctx, id)
}

func (f fakeStore) SaveToilet(ctx context.Context, toilet models.Toilet) (models.Toilet, error) {
	if f.saveToiletFn == nil {
		return toilet, nil
	}
	return f.saveToiletFn(ctx, toilet)
}

func (f fakeStore) ToiletsForProvider(ctx context.Context, providerID string) ([]models.Toilet, error) {
	if f.providerToiletsFn == nil {
		return nil, nil
	}
	return f.providerToiletsFn(ctx, providerID)
}

func (f fakeStore) Cleanings(ctx context.Context, force bool) ([]models.Cleaning, error) {
	if f.cleaningsFn == nil {
		return nil, nil
	}
	return f.cleaningsFn(ctx, force)
}

func (f fakeStore) SubmitCleaning(ctx context.Context, cleaning models.Cleaning) (queue.Result, error) {
	if f.submitFn == nil {
		return queue.Result{Delivered: true, Cleaning: cleaning}, nil
	}
	return f.submitFn(ctx, cleaning)
}

func (f fakeStore) PendingCleanings(ctx context.Context) ([]models.Cleaning, error) {
	if f.pendingFn == nil {
		return nil, nil
	}
	return f.pendingFn(ctx)
}

func (f fakeStore) Users(ctx context.Context, force bool) ([]models.User, error) {
	if f.usersFn == nil {
		return nil, nil
	}
	return f.usersFn(ctx, force)
}

func (f fakeStore) SaveUser(ctx context.Context, user models.User) (models.User, error) {
	if f.saveUserFn == nil {
		return user, nil
	}
	return f.saveUserFn(ctx, user)
}

func (f fakeStore) DeleteUser(ctx context.Context, id string) error {
	if f.deleteUserFn == nil {
		return nil
	}
	return f.deleteUserFn(ctx, id)
}

func (f fakeStore) Assignments(ctx context.Context) (models.Assignments, error) {
	if f.assignmentsFn == nil {
		return models.Assignments{}, nil
	}
	return f.assignmentsFn(ctx)
}

func (f fakeStore) ToggleAssignment(ctx context.Context, providerID, toiletID string) (models.Assignments, error) {
	if f.toggleFn == nil {
		return models.Assignments{}, nil
	}
	return f.toggleFn(ctx, providerID, toiletID)
}

func (f fakeStore) SaveAssignments(ctx context.Context, assignments models.Assignments) error {
	if f.saveAssignFn == nil {
		return nil
	}
	return f.saveAssignFn(ctx, assignments)
}

func (f fakeStore) Register(ctx context.Context, reg models.Registration) (models.Registration, error) {
	if f.registerFn == nil {
		return reg, nil
	}
	return f.registerFn(ctx, reg)
}

func (f fakeStore) PendingRegistrations(ctx context.Context) ([]models.Registration, error) {
	if f.pendingRegsFn == nil {
		return nil, nil
	}
	return f.pendingRegsFn(ctx)
}

func (f fakeStore) ApproveRegistration(ctx context.Context, id string) (models.User, error) {
	if f.approveFn == nil {
		return models.User{}, store.ErrRegistrationNotFound
	}
	return f.approveFn(ctx, id)
}

func (f fakeStore) RejectRegistration(ctx context.Context, id string) error {
	if f.rejectFn == nil {
		return store.ErrRegistrationNotFound
	}
	return f.rejectFn(ctx, id)
}

func (f fakeStore) Login(ctx context.Context, email, password string) (models.User, error) {
	if f.loginFn == nil {
		return models.User{}, store.ErrInvalidCredentials
	}
	return f.loginFn(ctx, email, password)
}

func (f fakeStore) CurrentUser(ctx context.Context) (models.User, bool, error) {
	if f.currentUserFn == nil {
		return models.User{}, false, nil
	}
	return f.currentUserFn(ctx)
}

func (f fakeStore) Logout(ctx context.Context) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx)
}

func asAdmin(st fakeStore) fakeStore {
	st.currentUserFn = func(ctx context.Context) (models.User, bool, error) {
		return models.User{ID: "a1", Role: models.RoleAdmin}, true, nil
	}
	return st
}

func TestLoginSuccess(t *testing.T) {
	st := fakeStore{
		loginFn: func(ctx context.Context, email, password string) (models.User, error) {
			return models.User{ID: "p1", Email: email, Role: models.RoleProvider, Password: "secret"}, nil
		},
	}
	body, _ := json.Marshal(map[string]string{"email": "sipho@example.com", "password": "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var decoded loginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if decoded.User.Password != "" {
		t.Fatal("password must not be echoed in the response")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	st := fakeStore{
		loginFn: func(ctx context.Context, email, password string) (models.User, error) {
			return models.User{}, store.ErrInvalidCredentials
		},
	}
	body, _ := json.Marshal(map[string]string{"email": "sipho@example.com", "password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestMeUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	resp := httptest.NewRecorder()

	NewHandler(fakeStore{}).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestCreateToiletRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/toilets", bytes.NewReader([]byte(`{"name":"Block A","area":"Langa","bogus":1}`)))
	resp := httptest.NewRecorder()

	NewHandler(fakeStore{}).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestCreateToiletStripsClientID(t *testing.T) {
	var got models.Toilet
	st := fakeStore{
		saveToiletFn: func(ctx context.Context, toilet models.Toilet) (models.Toilet, error) {
			got = toilet
			toilet.ID = "local_1"
			return toilet, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/toilets", bytes.NewReader([]byte(`{"id":"sneaky","name":"Block A","area":"Langa"}`)))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if got.ID != "" {
		t.Fatalf("create must not honor a client-supplied id, got %q", got.ID)
	}
}

func TestUpdateToiletNotFound(t *testing.T) {
	st := fakeStore{
		saveToiletFn: func(ctx context.Context, toilet models.Toilet) (models.Toilet, error) {
			return models.Toilet{}, store.ErrToiletNotFound
		},
	}
	req := httptest.NewRequest(http.MethodPut, "/api/toilets/missing", bytes.NewReader([]byte(`{"name":"Ghost","area":"Nowhere"}`)))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestSubmitCleaningQueuedReturnsAccepted(t *testing.T) {
	st := fakeStore{
		submitFn: func(ctx context.Context, cleaning models.Cleaning) (queue.Result, error) {
			return queue.Result{Queued: true, Cleaning: cleaning}, nil
		},
	}
	body := []byte(`{"toiletId":"t1","providerId":"p1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/cleanings", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", resp.Code)
	}
}

func TestSubmitCleaningRequiresIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/cleanings", bytes.NewReader([]byte(`{"toiletId":"t1"}`)))
	resp := httptest.NewRecorder()

	NewHandler(fakeStore{}).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestUsersRequiresAdmin(t *testing.T) {
	st := fakeStore{
		currentUserFn: func(ctx context.Context) (models.User, bool, error) {
			return models.User{ID: "p1", Role: models.RoleProvider}, true, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}

func TestUsersListSanitizesPasswords(t *testing.T) {
	st := asAdmin(fakeStore{
		usersFn: func(ctx context.Context, force bool) ([]models.User, error) {
			return []models.User{{ID: "p1", Email: "sipho@example.com", Password: "secret"}}, nil
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("secret")) {
		t.Fatal("passwords must not appear in the user list")
	}
}

func TestSaveAssignmentsConflict(t *testing.T) {
	st := asAdmin(fakeStore{
		saveAssignFn: func(ctx context.Context, assignments models.Assignments) error {
			return store.ErrDuplicateAssignment
		},
	})
	body := []byte(`{"p1":["t1"],"p2":["t1"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/assignments/save", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestToggleAssignmentValidates(t *testing.T) {
	st := asAdmin(fakeStore{})
	req := httptest.NewRequest(http.MethodPost, "/api/assignments/toggle", bytes.NewReader([]byte(`{"providerId":"p1"}`)))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestSubmitRegistration(t *testing.T) {
	st := fakeStore{
		registerFn: func(ctx context.Context, reg models.Registration) (models.Registration, error) {
			reg.ID = "reg-1"
			return reg, nil
		},
	}
	body := []byte(`{"name":"Naledi","email":"naledi@example.com","password":"secret","city":"Cape Town"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", bytes.NewReader(body))
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if bytes.Contains(resp.Body.Bytes(), []byte("secret")) {
		t.Fatal("password must not be echoed in the response")
	}
}

func TestSubmitRegistrationValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/registrations", bytes.NewReader([]byte(`{"name":"Naledi"}`)))
	resp := httptest.NewRecorder()

	NewHandler(fakeStore{}).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestRegistrationApprove(t *testing.T) {
	st := asAdmin(fakeStore{
		approveFn: func(ctx context.Context, id string) (models.User, error) {
			return models.User{ID: "local_1", Role: models.RoleProvider, ProviderCode: "CPT-002"}, nil
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/registrations/reg-1/approve", nil)
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestRegistrationRejectNotFound(t *testing.T) {
	st := asAdmin(fakeStore{
		rejectFn: func(ctx context.Context, id string) error {
			return store.ErrRegistrationNotFound
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/registrations/reg-9/reject", nil)
	resp := httptest.NewRecorder()

	NewHandler(st).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestCitiesAndAreas(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cities", nil)
	resp := httptest.NewRecorder()
	NewHandler(fakeStore{}).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var list []string
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected a non-empty city list")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/cities?city=Cape+Town", nil)
	resp = httptest.NewRecorder()
	NewHandler(fakeStore{}).Routes().ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var areas []string
	if err := json.Unmarshal(resp.Body.Bytes(), &areas); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(areas) == 0 {
		t.Fatal("expected areas for Cape Town")
	}
}
