package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one item of a collection persisted through gorm.
type Entry struct {
	ID         uint           `gorm:"primaryKey"`
	Collection string         `gorm:"size:64;not null;index:idx_collection_position,priority:1"`
	Position   int            `gorm:"not null;index:idx_collection_position,priority:2"`
	Payload    datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time
}

func (Entry) TableName() string {
	return "collection_entries"
}

// GormCollection stores a collection as ordered rows of JSON documents.
// WriteAll replaces the rows inside a single transaction.
type GormCollection[T any] struct {
	db   *gorm.DB
	name string
}

func NewGormCollection[T any](db *gorm.DB, name string) *GormCollection[T] {
	return &GormCollection[T]{db: db, name: name}
}

func (g *GormCollection[T]) ReadAll(ctx context.Context) ([]T, error) {
	var entries []Entry
	err := g.db.WithContext(ctx).
		Where("collection = ?", g.name).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", g.name, err)
	}

	items := make([]T, 0, len(entries))
	for _, e := range entries {
		var item T
		if err := json.Unmarshal(e.Payload, &item); err != nil {
			return nil, fmt.Errorf("decode %s[%d]: %w", g.name, e.Position, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (g *GormCollection[T]) WriteAll(ctx context.Context, items []T) error {
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		b, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode %s[%d]: %w", g.name, i, err)
		}
		entries = append(entries, Entry{
			Collection: g.name,
			Position:   i,
			Payload:    datatypes.JSON(b),
		})
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", g.name).Delete(&Entry{}).Error; err != nil {
			return fmt.Errorf("clear collection %s: %w", g.name, err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(entries, 100).Error; err != nil {
			return fmt.Errorf("write collection %s: %w", g.name, err)
		}
		return nil
	})
}
