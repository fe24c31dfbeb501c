package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// UploadDir is served read-only under /uploads when set.
	UploadDir string
}

type Handlers struct {
	Auth       AuthHandler
	Company    CompanyHandler
	Master     MasterHandler
	Employee   EmployeeHandler
	Device     DeviceHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Transfer   TransferHandler
	Report     ReportHandler
	IClock     IClockHandler
}

func NewRouter(cfg RouterConfig, jwtService jwt.Service, authorizer user.Authorizer, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Attendance terminals push here; they authenticate by serial number.
	r.Route("/iclock", func(r chi.Router) {
		r.Get("/cdata", h.IClock.Handshake)
		r.Post("/cdata", h.IClock.Upload)
		r.Get("/getrequest", h.IClock.GetRequest)
	})

	if cfg.UploadDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)

			r.Route("/login", func(r chi.Router) {
				r.Post("/", h.Auth.Login)
				r.Get("/oauth/google", h.Auth.LoginWithGoogle)
			})
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			can := func(p user.Permission) func(http.Handler) http.Handler {
				return middleware.RequirePermission(authorizer, p)
			}

			r.Route("/company/my", func(r chi.Router) {
				r.With(can(user.PermissionCompanyView)).Get("/", h.Company.GetMy)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionCompanyManage))
					r.Put("/", h.Company.UpdateMy)
					r.Post("/logo", h.Company.UploadLogo)
				})
			})

			r.Route("/branches", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionMasterView))
					r.Get("/", h.Master.ListBranches)
					r.Get("/{id}", h.Master.GetBranch)
					r.Get("/{id}/policy", h.Attendance.GetPolicy)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionMasterManage))
					r.Post("/", h.Master.CreateBranch)
					r.Put("/{id}", h.Master.UpdateBranch)
					r.Delete("/{id}", h.Master.DeleteBranch)
				})
				r.With(can(user.PermissionPolicyManage)).Put("/{id}/policy", h.Attendance.UpdatePolicy)
			})

			r.Route("/departments", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionMasterView))
					r.Get("/", h.Master.ListDepartments)
					r.Get("/{id}", h.Master.GetDepartment)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionMasterManage))
					r.Post("/", h.Master.CreateDepartment)
					r.Put("/{id}", h.Master.UpdateDepartment)
					r.Delete("/{id}", h.Master.DeleteDepartment)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.With(can(user.PermissionProfileViewOwn)).Get("/me", h.Employee.GetMe)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionEmployeeViewAll))
					r.Get("/", h.Employee.List)
					r.Get("/{id}", h.Employee.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionEmployeeManage))
					r.Post("/", h.Employee.Create)
					r.Put("/{id}", h.Employee.Update)
					r.Delete("/{id}", h.Employee.Delete)
					r.Post("/{id}/documents", h.Employee.UploadDocument)
					r.Delete("/{id}/documents/{name}", h.Employee.RemoveDocument)
				})
			})

			r.Route("/devices", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionDeviceView))
					r.Get("/", h.Device.List)
					r.Get("/{id}", h.Device.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionDeviceManage))
					r.Post("/", h.Device.Create)
					r.Put("/{id}", h.Device.Update)
					r.Delete("/{id}", h.Device.Delete)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(can(user.PermissionAttendanceViewOwn)).Get("/me", h.Attendance.ListMine)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceSync))
					r.Post("/sync", h.Attendance.Sync)
					r.Post("/import", h.Attendance.Import)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceViewAll))
					r.Get("/", h.Attendance.List)
					r.Get("/{id}", h.Attendance.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionAttendanceManage))
					r.Put("/{id}", h.Attendance.Update)
					r.Delete("/{id}", h.Attendance.Delete)
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/types", func(r chi.Router) {
					r.With(can(user.PermissionLeaveViewOwn)).Get("/", h.Leave.ListTypes)
					r.With(can(user.PermissionLeaveManageTypes)).Post("/", h.Leave.CreateType)
				})

				r.Route("/applications", func(r chi.Router) {
					r.With(can(user.PermissionLeaveCreate)).Post("/", h.Leave.Apply)
					r.With(can(user.PermissionLeaveViewOwn)).Get("/me", h.Leave.ListMyApplications)
					r.With(can(user.PermissionLeaveCreate)).Post("/{id}/cancel", h.Leave.Cancel)
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionLeaveViewAll))
						r.Get("/", h.Leave.ListApplications)
						r.Get("/{id}", h.Leave.GetApplication)
					})
					r.Group(func(r chi.Router) {
						r.Use(can(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", h.Leave.Approve)
						r.Post("/{id}/reject", h.Leave.Reject)
					})
				})
			})

			r.Route("/transfers", func(r chi.Router) {
				r.With(can(user.PermissionTransferRequest)).Post("/", h.Transfer.Request)
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionTransferViewAll))
					r.Get("/", h.Transfer.List)
					r.Get("/{id}", h.Transfer.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(can(user.PermissionTransferApprove))
					r.Post("/{id}/approve", h.Transfer.Approve)
					r.Post("/{id}/reject", h.Transfer.Reject)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(can(user.PermissionReportsView))
				r.Get("/attendance", h.Report.GetMonthlyAttendanceReport)
				r.Get("/new-hires", h.Report.GetNewHireReport)
			})
		})
	})

	return r
}
