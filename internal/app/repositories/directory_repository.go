package repositories

import (
	"context"
	"fmt"
)

// DirectoryRepository checks the existence of students, professors and rooms
type DirectoryRepository struct {
	db DBTX
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db DBTX) *DirectoryRepository {
	return &DirectoryRepository{
		db: db,
	}
}

func (r *DirectoryRepository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return exists, nil
}

// StudentExists checks if an active student exists
func (r *DirectoryRepository) StudentExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1 AND is_active)`, id)
}

// ProfessorExists checks if an active professor exists
func (r *DirectoryRepository) ProfessorExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM professors WHERE id = $1 AND is_active)`, id)
}

// RoomExists checks if an active room exists
func (r *DirectoryRepository) RoomExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1 AND is_active)`, id)
}
