// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate query behind the weak
// ETag of the persona listing.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-advisor-coach/internal/domain"
)

// PersonasStats returns the number of live personas owned by userID and the
// newest UpdatedAt among them (nil when there are none).
//
// Deleting a persona lowers the count, so together the two values change
// whenever the listing would.
func PersonasStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Persona{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Order+Limit instead of MAX(): SQLite returns MAX(datetime) as TEXT.
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
