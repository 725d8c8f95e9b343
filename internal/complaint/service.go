package complaint

import (
	"context"
	"log/slog"
	"time"

	"github.com/teryaq/pharmacy-backend/internal"
	"github.com/teryaq/pharmacy-backend/internal/access"
	"github.com/teryaq/pharmacy-backend/internal/audit"
	complaintDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/complaint"
	"github.com/teryaq/pharmacy-backend/internal/core/operation"
)

const (
	auditTarget = "COMPLAINT"

	DefaultPageSize = 20
	MaxPageSize     = 50
)

type ListQuery struct {
	PharmacyID int64
	Status     string
	Offset     int
	Limit      int
}

type RepositoryAPI interface {
	GetByID(ctx context.Context, id int64) (*complaintDatamodel.Complaint, error)
	Create(ctx context.Context, complaint *complaintDatamodel.Complaint) error
	Update(ctx context.Context, complaint *complaintDatamodel.Complaint) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, query ListQuery) ([]*complaintDatamodel.Complaint, int64, error)
	CountByStatus(ctx context.Context, pharmacyID int64) (map[string]int64, error)
	ListByStatuses(ctx context.Context, pharmacyID int64, statuses []string) ([]*complaintDatamodel.Complaint, error)
}

type CurrentUserProvider interface {
	CurrentUser(ctx context.Context) (*access.Subject, error)
}

type Service struct {
	repo       RepositoryAPI
	subjects   CurrentUserProvider
	decorators operation.Decorators
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo RepositoryAPI, subjects CurrentUserProvider, decorators operation.Decorators, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		subjects:   subjects,
		decorators: decorators,
		logger:     logger,
		now:        time.Now,
	}
}

// Create files a complaint against the current user's pharmacy.
func (s *Service) Create(ctx context.Context, req CreateComplaintRequest) (*Complaint, error) {
	action := audit.Action[*Complaint]{
		Name:       "CREATE_COMPLAINT",
		TargetType: auditTarget,
		TargetOf:   func(c *Complaint) string { return audit.ID(c.ID) },
		Details:    map[string]interface{}{"title": req.Title},
	}
	return operation.Run(ctx, s.decorators, "complaint.create", action, func(ctx context.Context) (*Complaint, error) {
		subject, err := s.subjects.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		pharmacyID, err := access.PharmacyOf(subject)
		if err != nil {
			return nil, err
		}

		client := internal.ClientInfoFromContext(ctx)
		row := ToDataModel(&Complaint{
			Title:          req.Title,
			Description:    req.Description,
			PharmacyID:     pharmacyID,
			Status:         StatusPending,
			AdditionalData: req.AdditionalData,
			IPAddress:      client.IPAddress,
			UserAgent:      client.UserAgent,
			UserType:       subject.RoleName,
		})
		if err := s.repo.Create(ctx, row); err != nil {
			return nil, internal.NewInternalError("Failed to create complaint", err)
		}

		s.logger.InfoContext(ctx, "complaint created", "complaint_id", row.ID, "pharmacy_id", pharmacyID)
		return FromDataModel(row), nil
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*Complaint, error) {
	subject, err := s.subjects.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.CanAccessPharmacy(subject, row.PharmacyID); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// List pages through the current pharmacy's complaints, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	pharmacyID, err := s.currentPharmacy(ctx)
	if err != nil {
		return nil, err
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, internal.ErrInvalidComplaintStatus.WithDetails(map[string]string{"status": string(filter.Status)})
	}
	if filter.Page < 0 {
		filter.Page = 0
	}
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultPageSize
	}
	if filter.PageSize > MaxPageSize {
		filter.PageSize = MaxPageSize
	}

	rows, total, err := s.repo.List(ctx, ListQuery{
		PharmacyID: pharmacyID,
		Status:     string(filter.Status),
		Offset:     filter.Page * filter.PageSize,
		Limit:      filter.PageSize,
	})
	if err != nil {
		return nil, internal.NewInternalError("Failed to list complaints", err)
	}

	return &ListResponse{
		Complaints: fromDataModels(rows),
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		Total:      total,
	}, nil
}

// Update changes status, response and additional data. Only platform admins and
// pharmacy managers of the complaint's pharmacy may do so.
func (s *Service) Update(ctx context.Context, id int64, req UpdateComplaintRequest) (*Complaint, error) {
	action := audit.Action[*Complaint]{
		Name:       "UPDATE_COMPLAINT",
		TargetType: auditTarget,
		TargetID:   audit.ID(id),
		Details:    map[string]interface{}{"status": string(req.Status)},
	}
	return operation.Run(ctx, s.decorators, "complaint.update", action, func(ctx context.Context) (*Complaint, error) {
		if !req.Status.IsValid() {
			return nil, internal.ErrInvalidComplaintStatus.WithDetails(map[string]string{"status": string(req.Status)})
		}

		subject, err := s.subjects.CurrentUser(ctx)
		if err != nil {
			return nil, err
		}
		row, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := access.CanManagePharmacyResource(subject, row.PharmacyID); err != nil {
			return nil, err
		}

		row.Status = string(req.Status)
		row.Response = req.Response
		row.AdditionalData = req.AdditionalData
		if req.Status.MarksResponded() {
			respondedAt := s.now()
			respondedBy := subject.ID
			row.RespondedBy = &respondedBy
			row.RespondedAt = &respondedAt
		}

		client := internal.ClientInfoFromContext(ctx)
		row.IPAddress = client.IPAddress
		row.UserAgent = client.UserAgent
		row.UserType = subject.RoleName

		if err := s.repo.Update(ctx, row); err != nil {
			return nil, internal.NewInternalError("Failed to update complaint", err)
		}
		return FromDataModel(row), nil
	})
}

// Delete removes a complaint. Only its creator or a platform admin may do so.
func (s *Service) Delete(ctx context.Context, id int64) error {
	action := audit.Action[struct{}]{
		Name:       "DELETE_COMPLAINT",
		TargetType: auditTarget,
		TargetID:   audit.ID(id),
	}
	_, err := operation.Run(ctx, s.decorators, "complaint.delete", action, func(ctx context.Context) (struct{}, error) {
		subject, err := s.subjects.CurrentUser(ctx)
		if err != nil {
			return struct{}{}, err
		}
		row, err := s.load(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		if err := access.CanRemoveOwnedResource(subject, row.CreatedBy, row.PharmacyID); err != nil {
			return struct{}{}, err
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			return struct{}{}, internal.NewInternalError("Failed to delete complaint", err)
		}
		return struct{}{}, nil
	})
	return err
}

// Statistics counts the current pharmacy's complaints per status. Every status is present.
func (s *Service) Statistics(ctx context.Context) (map[Status]int64, error) {
	pharmacyID, err := s.currentPharmacy(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountByStatus(ctx, pharmacyID)
	if err != nil {
		return nil, internal.NewInternalError("Failed to count complaints", err)
	}

	stats := make(map[Status]int64, len(AllStatuses))
	for _, status := range AllStatuses {
		stats[status] = counts[string(status)]
	}
	return stats, nil
}

func (s *Service) NeedingResponse(ctx context.Context) ([]*Complaint, error) {
	pharmacyID, err := s.currentPharmacy(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByStatuses(ctx, pharmacyID, []string{string(StatusPending), string(StatusInProgress)})
	if err != nil {
		return nil, internal.NewInternalError("Failed to list complaints", err)
	}
	return fromDataModels(rows), nil
}

func (s *Service) currentPharmacy(ctx context.Context) (int64, error) {
	subject, err := s.subjects.CurrentUser(ctx)
	if err != nil {
		return 0, err
	}
	return access.PharmacyOf(subject)
}

func (s *Service) load(ctx context.Context, id int64) (*complaintDatamodel.Complaint, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load complaint", "complaint_id", id, "error", err)
		return nil, internal.NewInternalError("Failed to load complaint", err)
	}
	if row == nil {
		return nil, internal.ErrComplaintNotFound
	}
	return row, nil
}

func fromDataModels(rows []*complaintDatamodel.Complaint) []*Complaint {
	complaints := make([]*Complaint, 0, len(rows))
	for _, row := range rows {
		complaints = append(complaints, FromDataModel(row))
	}
	return complaints
}
