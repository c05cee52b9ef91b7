// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides thin repository functions for the
// Persona model: no business rules, only persistence and query composition.
//
// Every lookup is scoped by owner. A persona that exists but belongs to a
// different user is reported exactly like a missing one (ErrNotFound).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can match either.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePersona inserts p, assigning a UUID when p.ID is empty and stamping
// CreatedAt in UTC. The stored row is returned.
func CreatePersona(ctx context.Context, db *gorm.DB, p *domain.Persona) (*domain.Persona, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPersona fetches one persona by id and owner.
func GetPersona(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Persona, error) {
	var p domain.Persona
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPersonas returns the number of live personas owned by userID.
func CountPersonas(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Persona{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListPersonasPage returns a page of personas for userID, newest first.
// Callers compute offset and limit from page/pageSize.
func ListPersonasPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Persona, error) {
	var out []domain.Persona
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DeletePersona soft-deletes a persona owned by userID. It returns
// ErrNotFound when no live row matched.
func DeletePersona(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Persona{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
