package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

const employeeColumns = `
	e.id, e.full_name, e.email, e.role, e.department_id, d.name,
	e.work_mode, e.status, e.created_at, e.updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.FullName, &emp.Email, &emp.Role, &emp.DepartmentID, &emp.DepartmentName,
		&emp.WorkMode, &emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// FindByID implements employee.Directory.
func (r *employeeRepository) FindByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + employeeColumns + `
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		WHERE e.id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}

	return emp, nil
}

// FindActiveByRoleAndDepartment implements employee.Directory.
// The longest-serving match wins so routing is stable between calls.
func (r *employeeRepository) FindActiveByRoleAndDepartment(ctx context.Context, role user.Role, departmentID *string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT " + employeeColumns + `
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		WHERE e.role = $1
		  AND e.status = 'active'
		  AND ($2::uuid IS NULL OR e.department_id = $2::uuid)
		ORDER BY e.created_at ASC, e.id ASC
		LIMIT 1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, role, departmentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to find %s: %w", role, err)
	}

	return emp, nil
}

func NewEmployeeRepository(db *database.DB) employee.Directory {
	return &employeeRepository{
		db: db,
	}
}
