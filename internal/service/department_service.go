package service

import (
	"context"
	"errors"
	"strings"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs
type CreateDepartmentRequest struct {
	Name  string `json:"name" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type UpdateDepartmentRequest struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type AddDepartmentMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type DepartmentResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type DepartmentService interface {
	CreateDepartment(ctx context.Context, actor Actor, req CreateDepartmentRequest) (DepartmentResponse, error)
	UpdateDepartment(ctx context.Context, actor Actor, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	ListDepartments(ctx context.Context, actor Actor) ([]DepartmentResponse, error)
	AddMember(ctx context.Context, actor Actor, deptID string, req AddDepartmentMemberRequest) error
	RemoveMember(ctx context.Context, actor Actor, deptID, userID string) error
}

type departmentService struct {
	repo repository.DepartmentRepository
}

func NewDepartmentService(repo repository.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func (s *departmentService) CreateDepartment(ctx context.Context, actor Actor, req CreateDepartmentRequest) (DepartmentResponse, error) {
	if !actor.IsElevated() {
		return DepartmentResponse{}, &AuthorizationError{Operation: "create department", Reason: "requires ADMIN or OWNER role"}
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Code) == "" {
		return DepartmentResponse{}, &ValidationError{Field: "name", Reason: "name and code are required"}
	}

	icon := req.Icon
	if icon == "" {
		icon = model.DeptIconBuilding
	}
	if !model.ValidDeptIcon(icon) {
		return DepartmentResponse{}, &ValidationError{Field: "icon", Reason: "unknown department icon"}
	}
	color := req.Color
	if color == "" {
		color = model.DeptColorBlue
	}
	if !model.ValidDeptColor(color) {
		return DepartmentResponse{}, &ValidationError{Field: "color", Reason: "unknown department color"}
	}

	dept := &model.Department{
		OrganizationID: actor.OrganizationID,
		Name:           req.Name,
		Code:           req.Code,
		Icon:           icon,
		Color:          color,
	}
	if err := s.repo.Create(ctx, dept); err != nil {
		return DepartmentResponse{}, err
	}

	return toDepartmentResponse(dept), nil
}

func (s *departmentService) UpdateDepartment(ctx context.Context, actor Actor, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	if !actor.IsElevated() {
		return DepartmentResponse{}, &AuthorizationError{Operation: "update department", Reason: "requires ADMIN or OWNER role"}
	}

	deptID, err := uuid.Parse(id)
	if err != nil {
		return DepartmentResponse{}, &NotFoundError{Entity: "department", ID: id}
	}

	dept, err := s.repo.FindByID(ctx, actor.OrganizationID, deptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DepartmentResponse{}, &NotFoundError{Entity: "department", ID: id}
		}
		return DepartmentResponse{}, err
	}

	if req.Name != "" {
		dept.Name = req.Name
	}
	if req.Icon != "" {
		if !model.ValidDeptIcon(req.Icon) {
			return DepartmentResponse{}, &ValidationError{Field: "icon", Reason: "unknown department icon"}
		}
		dept.Icon = req.Icon
	}
	if req.Color != "" {
		if !model.ValidDeptColor(req.Color) {
			return DepartmentResponse{}, &ValidationError{Field: "color", Reason: "unknown department color"}
		}
		dept.Color = req.Color
	}

	if err := s.repo.Update(ctx, dept); err != nil {
		return DepartmentResponse{}, err
	}

	return toDepartmentResponse(dept), nil
}

func (s *departmentService) ListDepartments(ctx context.Context, actor Actor) ([]DepartmentResponse, error) {
	depts, err := s.repo.List(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}

	res := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		res = append(res, toDepartmentResponse(&depts[i]))
	}
	return res, nil
}

func (s *departmentService) AddMember(ctx context.Context, actor Actor, deptID string, req AddDepartmentMemberRequest) error {
	if !actor.IsElevated() {
		return &AuthorizationError{Operation: "add department member", Reason: "requires ADMIN or OWNER role"}
	}

	dID, err := uuid.Parse(deptID)
	if err != nil {
		return &NotFoundError{Entity: "department", ID: deptID}
	}
	uID, err := uuid.Parse(req.UserID)
	if err != nil {
		return &ValidationError{Field: "user_id", Reason: "invalid id"}
	}

	if _, err := s.repo.FindByID(ctx, actor.OrganizationID, dID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "department", ID: deptID}
		}
		return err
	}

	return s.repo.AddMember(ctx, &model.DepartmentMember{DepartmentID: dID, UserID: uID})
}

func (s *departmentService) RemoveMember(ctx context.Context, actor Actor, deptID, userID string) error {
	if !actor.IsElevated() {
		return &AuthorizationError{Operation: "remove department member", Reason: "requires ADMIN or OWNER role"}
	}

	dID, err := uuid.Parse(deptID)
	if err != nil {
		return &NotFoundError{Entity: "department", ID: deptID}
	}
	uID, err := uuid.Parse(userID)
	if err != nil {
		return &ValidationError{Field: "user_id", Reason: "invalid id"}
	}

	return s.repo.RemoveMember(ctx, dID, uID)
}

func toDepartmentResponse(d *model.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:    d.ID.String(),
		Name:  d.Name,
		Code:  d.Code,
		Icon:  d.Icon,
		Color: d.Color,
	}
}
