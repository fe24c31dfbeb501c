package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/pagination"
	attendancesvc "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	"github.com/jackc/pgx/v5/pgconn"
)

type EmployeeLookup interface {
	GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error)
}

// LeaveStamper writes approved leave onto the attendance sheet.
type LeaveStamper interface {
	MarkOnLeave(ctx context.Context, s attendancesvc.LeaveStamp) (int, error)
}

type LeaveServiceImpl struct {
	types     leave.LeaveTypeRepository
	apps      leave.LeaveApplicationRepository
	employees EmployeeLookup
	stamper   LeaveStamper
	tx        database.Transactor
	now       func() time.Time
}

func NewLeaveService(
	types leave.LeaveTypeRepository,
	apps leave.LeaveApplicationRepository,
	employees EmployeeLookup,
	stamper LeaveStamper,
	tx database.Transactor,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		types:     types,
		apps:      apps,
		employees: employees,
		stamper:   stamper,
		tx:        tx,
		now:       time.Now,
	}
}

// CreateLeaveType implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	created, err := s.types.Create(ctx, leave.LeaveType{
		CompanyID:        companyID,
		Name:             req.Name,
		Code:             req.Code,
		RequiresApproval: *req.RequiresApproval,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return leave.LeaveTypeResponse{}, leave.ErrLeaveTypeCodeExists
		}
		return leave.LeaveTypeResponse{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	return leave.NewLeaveTypeResponse(created), nil
}

// ListLeaveTypes implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaveTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	types, err := s.types.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	resp := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, leave.NewLeaveTypeResponse(t))
	}
	return resp, nil
}

// Apply implements leave.LeaveService. Leave types that need no approval
// are approved on the spot.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveApplicationResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if claims.EmployeeID == "" {
		return leave.LeaveApplicationResponse{}, leave.ErrEmployeeProfileRequired
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	start, end := req.Range()

	leaveType, err := s.types.GetByID(ctx, req.LeaveTypeID, claims.CompanyID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	overlap, err := s.apps.HasOverlap(ctx, claims.EmployeeID, start, end, claims.CompanyID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	if overlap {
		return leave.LeaveApplicationResponse{}, leave.ErrOverlappingApplication
	}

	app, err := s.apps.Create(ctx, leave.LeaveApplication{
		CompanyID:   claims.CompanyID,
		EmployeeID:  claims.EmployeeID,
		LeaveTypeID: leaveType.ID,
		StartDate:   start,
		EndDate:     end,
		Reason:      req.Reason,
		Status:      leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to create leave application: %w", err)
	}
	app.LeaveTypeName = &leaveType.Name

	if !leaveType.RequiresApproval {
		app, err = s.approve(ctx, app, claims.UserID)
		if err != nil {
			return leave.LeaveApplicationResponse{}, err
		}
	}

	slog.Info("leave applied", "application_id", app.ID, "employee_id", app.EmployeeID, "status", app.Status)
	return leave.NewLeaveApplicationResponse(app), nil
}

// ListApplications implements leave.LeaveService.
func (s *LeaveServiceImpl) ListApplications(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveApplicationResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return leave.ListLeaveApplicationResponse{}, err
	}
	return s.list(ctx, filter, companyID)
}

// ListMyApplications implements leave.LeaveService.
func (s *LeaveServiceImpl) ListMyApplications(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveApplicationResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.ListLeaveApplicationResponse{}, err
	}
	if claims.EmployeeID == "" {
		return leave.ListLeaveApplicationResponse{}, leave.ErrEmployeeProfileRequired
	}
	filter.EmployeeID = &claims.EmployeeID
	return s.list(ctx, filter, claims.CompanyID)
}

func (s *LeaveServiceImpl) list(ctx context.Context, filter leave.LeaveFilter, companyID string) (leave.ListLeaveApplicationResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveApplicationResponse{}, err
	}

	apps, total, err := s.apps.List(ctx, filter, companyID)
	if err != nil {
		return leave.ListLeaveApplicationResponse{}, fmt.Errorf("failed to list leave applications: %w", err)
	}

	resp := leave.ListLeaveApplicationResponse{
		Page:         pagination.New(total, filter.Page, filter.Limit),
		Applications: make([]leave.LeaveApplicationResponse, 0, len(apps)),
	}
	for _, a := range apps {
		resp.Applications = append(resp.Applications, leave.NewLeaveApplicationResponse(a))
	}
	return resp, nil
}

// GetApplication implements leave.LeaveService.
func (s *LeaveServiceImpl) GetApplication(ctx context.Context, id string) (leave.LeaveApplicationResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	app, err := s.apps.GetByID(ctx, id, companyID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	return leave.NewLeaveApplicationResponse(app), nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, id string) (leave.LeaveApplicationResponse, error) {
	claims, app, err := s.pendingForReview(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	app, err = s.approve(ctx, app, claims.UserID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	return leave.NewLeaveApplicationResponse(app), nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, req leave.RejectLeaveRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	claims, app, err := s.pendingForReview(ctx, req.ID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	now := s.now().UTC()
	app.Status = leave.StatusRejected
	app.ReviewedBy = &claims.UserID
	app.ReviewedAt = &now
	app.RejectionReason = &req.Reason
	if err := s.apps.UpdateStatus(ctx, app); err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to reject leave application: %w", err)
	}

	slog.Info("leave rejected", "application_id", app.ID, "reviewed_by", claims.UserID)
	return leave.NewLeaveApplicationResponse(app), nil
}

// Cancel implements leave.LeaveService. Only the applicant may cancel, and
// only while the application is pending.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, id string) (leave.LeaveApplicationResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	app, err := s.apps.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if claims.EmployeeID == "" || app.EmployeeID != claims.EmployeeID {
		return leave.LeaveApplicationResponse{}, leave.ErrNotApplicationOwner
	}
	if app.Status != leave.StatusPending {
		return leave.LeaveApplicationResponse{}, leave.ErrApplicationNotPending
	}

	app.Status = leave.StatusCancelled
	if err := s.apps.UpdateStatus(ctx, app); err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to cancel leave application: %w", err)
	}
	return leave.NewLeaveApplicationResponse(app), nil
}

func (s *LeaveServiceImpl) pendingForReview(ctx context.Context, id string) (jwt.Claims, leave.LeaveApplication, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return jwt.Claims{}, leave.LeaveApplication{}, err
	}

	app, err := s.apps.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return jwt.Claims{}, leave.LeaveApplication{}, err
	}
	if app.Status != leave.StatusPending {
		return jwt.Claims{}, leave.LeaveApplication{}, leave.ErrApplicationNotPending
	}
	if claims.EmployeeID != "" && claims.EmployeeID == app.EmployeeID {
		return jwt.Claims{}, leave.LeaveApplication{}, leave.ErrCannotReviewOwnApplication
	}
	return claims, app, nil
}

// approve flips the status and stamps attendance in one transaction.
func (s *LeaveServiceImpl) approve(ctx context.Context, app leave.LeaveApplication, reviewerID string) (leave.LeaveApplication, error) {
	emp, err := s.employees.GetByID(ctx, app.EmployeeID, app.CompanyID)
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	now := s.now().UTC()
	app.Status = leave.StatusApproved
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = &now

	var stamped int
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.apps.UpdateStatus(ctx, app); err != nil {
			return fmt.Errorf("failed to approve leave application: %w", err)
		}
		stamped, err = s.stamper.MarkOnLeave(ctx, attendancesvc.LeaveStamp{
			CompanyID:          app.CompanyID,
			BranchID:           emp.BranchID,
			EmployeeID:         app.EmployeeID,
			LeaveApplicationID: app.ID,
			From:               app.StartDate,
			To:                 app.EndDate,
		})
		return err
	})
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	slog.Info("leave approved", "application_id", app.ID, "reviewed_by", reviewerID, "days_stamped", stamped)
	return app, nil
}
