package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"study-chat-server/internal/domain"
)

// GroupRepository reads study-group membership owned by the external
// group service. Implements service.GroupDirectory. This core never
// writes these tables; the group endpoints maintain them.
type GroupRepository struct {
	DB *sql.DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

// GroupMembers returns the roster of a group, joined order.
func (r *GroupRepository) GroupMembers(ctx context.Context, roomID string) ([]domain.Member, error) {
	query := `
		SELECT user_id, user_name, role
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at ASC`

	rows, err := r.DB.QueryContext(ctx, query, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of group %s: %w", roomID, err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.UserID, &m.UserName, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}
