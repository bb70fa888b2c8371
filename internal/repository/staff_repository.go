package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-attendance/internal/models"
)

const staffColumns = "id, staff_code, full_name, department, role, shift_preference, contact_number, email, active, created_at, updated_at"

// StaffRepository reads the staff roster.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff members matching filters along with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.StaffMember, int, error) {
	base := "FROM staff_members WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ActiveOnly {
		conditions = append(conditions, "active = TRUE")
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(staff_code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY full_name ASC, staff_code ASC LIMIT %d OFFSET %d", staffColumns, base, size, offset)
	var staff []models.StaffMember
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff members: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff members: %w", err)
	}

	return staff, total, nil
}

// FindByID fetches a staff member by ID.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.StaffMember, error) {
	query := fmt.Sprintf("SELECT %s FROM staff_members WHERE id = $1", staffColumns)
	var member models.StaffMember
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find staff member: %w", err)
	}
	return &member, nil
}

// FindByIDs fetches the staff members among ids, keyed by id. Unknown ids are absent from the map.
func (r *StaffRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.StaffMember, error) {
	out := make(map[string]models.StaffMember, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM staff_members WHERE id IN (?)", staffColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build staff lookup: %w", err)
	}
	var members []models.StaffMember
	if err := r.db.SelectContext(ctx, &members, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find staff members: %w", err)
	}
	for _, m := range members {
		out[m.ID] = m
	}
	return out, nil
}
