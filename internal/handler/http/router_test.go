package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHandlers satisfies every handler interface and echoes the method name.
type stubHandlers struct{}

func reply(name string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", name)
		w.WriteHeader(http.StatusOK)
	}
}

func (stubHandlers) Register(w http.ResponseWriter, r *http.Request) { reply("Register")(w, r) }
func (stubHandlers) Login(w http.ResponseWriter, r *http.Request)    { reply("Login")(w, r) }
func (stubHandlers) LoginWithGoogle(w http.ResponseWriter, r *http.Request) {
	reply("LoginWithGoogle")(w, r)
}
func (stubHandlers) OAuthCallbackGoogle(w http.ResponseWriter, r *http.Request) {
	reply("OAuthCallbackGoogle")(w, r)
}
func (stubHandlers) Logout(w http.ResponseWriter, r *http.Request)       { reply("Logout")(w, r) }
func (stubHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) { reply("RefreshToken")(w, r) }
func (stubHandlers) GetMy(w http.ResponseWriter, r *http.Request)        { reply("GetMy")(w, r) }
func (stubHandlers) UpdateMy(w http.ResponseWriter, r *http.Request)     { reply("UpdateMy")(w, r) }
func (stubHandlers) UploadLogo(w http.ResponseWriter, r *http.Request)   { reply("UploadLogo")(w, r) }
func (stubHandlers) CreateBranch(w http.ResponseWriter, r *http.Request) { reply("CreateBranch")(w, r) }
func (stubHandlers) GetBranch(w http.ResponseWriter, r *http.Request)    { reply("GetBranch")(w, r) }
func (stubHandlers) ListBranches(w http.ResponseWriter, r *http.Request) { reply("ListBranches")(w, r) }
func (stubHandlers) UpdateBranch(w http.ResponseWriter, r *http.Request) { reply("UpdateBranch")(w, r) }
func (stubHandlers) DeleteBranch(w http.ResponseWriter, r *http.Request) { reply("DeleteBranch")(w, r) }
func (stubHandlers) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	reply("CreateDepartment")(w, r)
}
func (stubHandlers) GetDepartment(w http.ResponseWriter, r *http.Request) {
	reply("GetDepartment")(w, r)
}
func (stubHandlers) ListDepartments(w http.ResponseWriter, r *http.Request) {
	reply("ListDepartments")(w, r)
}
func (stubHandlers) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	reply("UpdateDepartment")(w, r)
}
func (stubHandlers) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	reply("DeleteDepartment")(w, r)
}
func (stubHandlers) List(w http.ResponseWriter, r *http.Request)         { reply("List")(w, r) }
func (stubHandlers) ListMine(w http.ResponseWriter, r *http.Request)     { reply("ListMine")(w, r) }
func (stubHandlers) Get(w http.ResponseWriter, r *http.Request)          { reply("Get")(w, r) }
func (stubHandlers) GetMe(w http.ResponseWriter, r *http.Request)        { reply("GetMe")(w, r) }
func (stubHandlers) Create(w http.ResponseWriter, r *http.Request)       { reply("Create")(w, r) }
func (stubHandlers) Update(w http.ResponseWriter, r *http.Request)       { reply("Update")(w, r) }
func (stubHandlers) Delete(w http.ResponseWriter, r *http.Request)       { reply("Delete")(w, r) }
func (stubHandlers) GetPolicy(w http.ResponseWriter, r *http.Request)    { reply("GetPolicy")(w, r) }
func (stubHandlers) UpdatePolicy(w http.ResponseWriter, r *http.Request) { reply("UpdatePolicy")(w, r) }
func (stubHandlers) Sync(w http.ResponseWriter, r *http.Request)         { reply("Sync")(w, r) }
func (stubHandlers) Import(w http.ResponseWriter, r *http.Request)       { reply("Import")(w, r) }
func (stubHandlers) UploadDocument(w http.ResponseWriter, r *http.Request) {
	reply("UploadDocument")(w, r)
}
func (stubHandlers) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	reply("RemoveDocument")(w, r)
}
func (stubHandlers) CreateType(w http.ResponseWriter, r *http.Request) { reply("CreateType")(w, r) }
func (stubHandlers) ListTypes(w http.ResponseWriter, r *http.Request)  { reply("ListTypes")(w, r) }
func (stubHandlers) Apply(w http.ResponseWriter, r *http.Request)      { reply("Apply")(w, r) }
func (stubHandlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	reply("ListApplications")(w, r)
}
func (stubHandlers) ListMyApplications(w http.ResponseWriter, r *http.Request) {
	reply("ListMyApplications")(w, r)
}
func (stubHandlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	reply("GetApplication")(w, r)
}
func (stubHandlers) Approve(w http.ResponseWriter, r *http.Request)    { reply("Approve")(w, r) }
func (stubHandlers) Reject(w http.ResponseWriter, r *http.Request)     { reply("Reject")(w, r) }
func (stubHandlers) Cancel(w http.ResponseWriter, r *http.Request)     { reply("Cancel")(w, r) }
func (stubHandlers) Request(w http.ResponseWriter, r *http.Request)    { reply("Request")(w, r) }
func (stubHandlers) Handshake(w http.ResponseWriter, r *http.Request)  { reply("Handshake")(w, r) }
func (stubHandlers) Upload(w http.ResponseWriter, r *http.Request)     { reply("Upload")(w, r) }
func (stubHandlers) GetRequest(w http.ResponseWriter, r *http.Request) { reply("GetRequest")(w, r) }
func (stubHandlers) GetMonthlyAttendanceReport(w http.ResponseWriter, r *http.Request) {
	reply("GetMonthlyAttendanceReport")(w, r)
}
func (stubHandlers) GetNewHireReport(w http.ResponseWriter, r *http.Request) {
	reply("GetNewHireReport")(w, r)
}

func newTestRouter(t *testing.T) (http.Handler, *jwt.JWTService) {
	t.Helper()
	svc := jwt.NewJWTService("router-secret", 15*time.Minute, time.Hour)
	s := stubHandlers{}
	r := NewRouter(
		RouterConfig{AppName: "test", Env: "test", LogLevel: slog.LevelError, AllowedOrigins: []string{"http://localhost:3000"}},
		svc,
		user.DefaultAuthorizer(),
		Handlers{
			Auth: s, Company: s, Master: s, Employee: s, Device: s,
			Attendance: s, Leave: s, Transfer: s, Report: s, IClock: s,
		},
	)
	return r, svc
}

func bearer(t *testing.T, svc *jwt.JWTService, role user.Role) string {
	t.Helper()
	empID := "emp-1"
	token, _, err := svc.GenerateAccessToken("user-1", "u@acme.io", &empID, "company-1", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Routes(t *testing.T) {
	router, svc := newTestRouter(t)

	tests := []struct {
		name    string
		method  string
		path    string
		role    user.Role
		status  int
		handler string
	}{
		{"public login", http.MethodPost, "/api/v1/auth/login", "", http.StatusOK, "Login"},
		{"terminal handshake", http.MethodGet, "/iclock/cdata?SN=X1", "", http.StatusOK, "Handshake"},
		{"terminal upload", http.MethodPost, "/iclock/cdata?SN=X1&table=ATTLOG", "", http.StatusOK, "Upload"},
		{"missing token", http.MethodGet, "/api/v1/attendance/me", "", http.StatusUnauthorized, ""},
		{"own attendance", http.MethodGet, "/api/v1/attendance/me", user.RoleEmployee, http.StatusOK, "ListMine"},
		{"own profile beats id route", http.MethodGet, "/api/v1/employees/me", user.RoleEmployee, http.StatusOK, "GetMe"},
		{"employee cannot manage devices", http.MethodPost, "/api/v1/devices", user.RoleEmployee, http.StatusForbidden, ""},
		{"owner manages devices", http.MethodPost, "/api/v1/devices", user.RoleOwner, http.StatusOK, "Create"},
		{"employee applies for leave", http.MethodPost, "/api/v1/leave/applications", user.RoleEmployee, http.StatusOK, "Apply"},
		{"employee cannot approve leave", http.MethodPost, "/api/v1/leave/applications/a1/approve", user.RoleEmployee, http.StatusForbidden, ""},
		{"manager approves leave", http.MethodPost, "/api/v1/leave/applications/a1/approve", user.RoleManager, http.StatusOK, "Approve"},
		{"owner updates policy", http.MethodPut, "/api/v1/branches/b1/policy", user.RoleOwner, http.StatusOK, "UpdatePolicy"},
		{"employee cannot update company", http.MethodPut, "/api/v1/company/my", user.RoleEmployee, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", bearer(t, svc, tt.role))
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.handler, rec.Header().Get("X-Handler"))
		})
	}
}
