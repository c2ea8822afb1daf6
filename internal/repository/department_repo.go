package repository

import (
	"context"

	"medstock/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Department, error)
	List(ctx context.Context, orgID uuid.UUID) ([]model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	AddMember(ctx context.Context, member *model.DepartmentMember) error
	RemoveMember(ctx context.Context, deptID, userID uuid.UUID) error
	ListMemberDepartmentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *model.Department) error {
	return GetDB(ctx, r.db).Create(dept).Error
}

func (r *departmentRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).First(&dept, "id = ? AND organization_id = ?", id, orgID).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context, orgID uuid.UUID) ([]model.Department, error) {
	var depts []model.Department
	if err := GetDB(ctx, r.db).Where("organization_id = ?", orgID).Order("name ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *departmentRepository) Update(ctx context.Context, dept *model.Department) error {
	return GetDB(ctx, r.db).Save(dept).Error
}

func (r *departmentRepository) AddMember(ctx context.Context, member *model.DepartmentMember) error {
	return GetDB(ctx, r.db).Create(member).Error
}

func (r *departmentRepository) RemoveMember(ctx context.Context, deptID, userID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("department_id = ? AND user_id = ?", deptID, userID).
		Delete(&model.DepartmentMember{}).Error
}

func (r *departmentRepository) ListMemberDepartmentIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.DepartmentMember{}).
		Where("user_id = ?", userID).
		Pluck("department_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
