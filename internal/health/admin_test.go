package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeAdmin struct {
	status        StatusInfo
	statusErr     error
	authorizeErr  error
	forceErr      error
	forceOperator string
}

func (f *fakeAdmin) Status(_ context.Context) (StatusInfo, error) {
	return f.status, f.statusErr
}

func (f *fakeAdmin) Authorize(_ context.Context) error {
	return f.authorizeErr
}

func (f *fakeAdmin) ForceFailover(_ context.Context, operatorID string) error {
	f.forceOperator = operatorID
	return f.forceErr
}

func TestServer_AdminStatus(t *testing.T) {
	admin := &fakeAdmin{status: StatusInfo{State: "DEGRADED", Scores: map[string]float64{"cloudflare": 30}}}
	s := New(0)
	s.RegisterAdmin(admin)

	req := httptest.NewRequest(http.MethodGet, "/admin/status", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got StatusInfo
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.State != "DEGRADED" {
		t.Errorf("State = %q, want DEGRADED", got.State)
	}
}

func TestServer_AdminStatus_Error(t *testing.T) {
	admin := &fakeAdmin{statusErr: errors.New("boom")}
	s := New(0)
	s.RegisterAdmin(admin)

	req := httptest.NewRequest(http.MethodGet, "/admin/status", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestServer_AdminAuthorize(t *testing.T) {
	admin := &fakeAdmin{}
	s := New(0)
	s.RegisterAdmin(admin)

	req := httptest.NewRequest(http.MethodPost, "/admin/authorize", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestServer_AdminForceFailover_SafetyRejection(t *testing.T) {
	admin := &fakeAdmin{forceErr: &AdminError{Class: ClassSafetyRejection, Err: errors.New("cooldown not elapsed")}}
	s := New(0)
	s.RegisterAdmin(admin)

	req := httptest.NewRequest(http.MethodPost, "/admin/force-failover?operator=alice", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if admin.forceOperator != "alice" {
		t.Errorf("forceOperator = %q, want alice", admin.forceOperator)
	}
}

func TestServer_AdminForceFailover_RegistrarError(t *testing.T) {
	admin := &fakeAdmin{forceErr: &AdminError{Class: ClassRegistrar, Err: errors.New("update failed")}}
	s := New(0)
	s.RegisterAdmin(admin)

	req := httptest.NewRequest(http.MethodPost, "/admin/force-failover", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
}

func TestServer_AdminEndpoints_WrongMethod(t *testing.T) {
	admin := &fakeAdmin{}
	s := New(0)
	s.RegisterAdmin(admin)

	req := httptest.NewRequest(http.MethodPost, "/admin/status", nil)
	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}
