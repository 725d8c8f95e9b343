package postgres

import (
	"context"
	"errors"

	"github.com/teryaq/pharmacy-backend/internal/complaint"
	complaintDatamodel "github.com/teryaq/pharmacy-backend/internal/core/datamodel/complaint"
	"gorm.io/gorm"
)

type ComplaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) complaint.RepositoryAPI {
	return &ComplaintRepository{db: db}
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id int64) (*complaintDatamodel.Complaint, error) {
	var row complaintDatamodel.Complaint
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ComplaintRepository) Create(ctx context.Context, row *complaintDatamodel.Complaint) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *ComplaintRepository) Update(ctx context.Context, row *complaintDatamodel.Complaint) error {
	return r.db.WithContext(ctx).Save(row).Error
}

func (r *ComplaintRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&complaintDatamodel.Complaint{}).Error
}

func (r *ComplaintRepository) List(ctx context.Context, query complaint.ListQuery) ([]*complaintDatamodel.Complaint, int64, error) {
	filtered := func() *gorm.DB {
		scope := r.db.WithContext(ctx).Model(&complaintDatamodel.Complaint{}).Where("pharmacy_id = ?", query.PharmacyID)
		if query.Status != "" {
			scope = scope.Where("status = ?", query.Status)
		}
		return scope
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*complaintDatamodel.Complaint
	err := filtered().Order("created_at DESC, id DESC").Offset(query.Offset).Limit(query.Limit).Find(&rows).Error
	return rows, total, err
}

type statusCount struct {
	Status string
	Total  int64
}

func (r *ComplaintRepository) CountByStatus(ctx context.Context, pharmacyID int64) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&complaintDatamodel.Complaint{}).
		Select("status, COUNT(*) AS total").
		Where("pharmacy_id = ?", pharmacyID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *ComplaintRepository) ListByStatuses(ctx context.Context, pharmacyID int64, statuses []string) ([]*complaintDatamodel.Complaint, error) {
	var rows []*complaintDatamodel.Complaint
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ? AND status IN ?", pharmacyID, statuses).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}
