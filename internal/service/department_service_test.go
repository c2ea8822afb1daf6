package service

import (
	"context"
	"testing"

	"medstock/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartmentService(t *testing.T) {
	orgID := uuid.New()
	admin := Actor{UserID: uuid.New(), OrganizationID: orgID, Role: model.RoleAdmin}
	member := Actor{UserID: uuid.New(), OrganizationID: orgID, Role: model.RoleMember}

	t.Run("admin creates with defaults", func(t *testing.T) {
		svc := NewDepartmentService(newFakeDepartmentRepo())

		resp, err := svc.CreateDepartment(context.Background(), admin, CreateDepartmentRequest{
			Name: "Emergency", Code: "ER",
		})
		require.NoError(t, err)
		assert.Equal(t, model.DeptIconBuilding, resp.Icon)
		assert.Equal(t, model.DeptColorBlue, resp.Color)
	})

	t.Run("member cannot create", func(t *testing.T) {
		svc := NewDepartmentService(newFakeDepartmentRepo())

		_, err := svc.CreateDepartment(context.Background(), member, CreateDepartmentRequest{
			Name: "Emergency", Code: "ER",
		})
		var authErr *AuthorizationError
		require.ErrorAs(t, err, &authErr)
	})

	t.Run("rejects unknown icon", func(t *testing.T) {
		svc := NewDepartmentService(newFakeDepartmentRepo())

		_, err := svc.CreateDepartment(context.Background(), admin, CreateDepartmentRequest{
			Name: "Emergency", Code: "ER", Icon: "ROCKET",
		})
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("update preserves unset fields", func(t *testing.T) {
		repo := newFakeDepartmentRepo()
		svc := NewDepartmentService(repo)

		created, err := svc.CreateDepartment(context.Background(), admin, CreateDepartmentRequest{
			Name: "Emergency", Code: "ER", Icon: model.DeptIconBed, Color: model.DeptColorRed,
		})
		require.NoError(t, err)

		updated, err := svc.UpdateDepartment(context.Background(), admin, created.ID, UpdateDepartmentRequest{
			Name: "Emergency Room",
		})
		require.NoError(t, err)
		assert.Equal(t, "Emergency Room", updated.Name)
		assert.Equal(t, model.DeptIconBed, updated.Icon)
		assert.Equal(t, model.DeptColorRed, updated.Color)
	})

	t.Run("update of missing department yields not found", func(t *testing.T) {
		svc := NewDepartmentService(newFakeDepartmentRepo())

		_, err := svc.UpdateDepartment(context.Background(), admin, uuid.NewString(), UpdateDepartmentRequest{Name: "x"})
		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
	})
}
