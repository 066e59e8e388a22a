package logstore

import (
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rikuzen/chatferry/internal/dialog"
)

// ArchiveRecord is the searchable copy of a finalized record. The day files
// remain the source of truth; the archive exists for the search API.
type ArchiveRecord struct {
	ID             uint   `gorm:"primaryKey"`
	EventID        string `gorm:"size:64;uniqueIndex"`
	Code           string `gorm:"size:8;index"`
	Player         string `gorm:"size:255"`
	Name           string `gorm:"size:255"`
	Text           string `gorm:"type:text"`
	TranslatedName string `gorm:"size:255"`
	TranslatedText string `gorm:"type:text"`
	Timestamp      int64  `gorm:"index"`
	CreatedAt      int64  `gorm:"autoCreateTime:milli"`
	UpdatedAt      int64  `gorm:"autoUpdateTime:milli"`
}

func (ArchiveRecord) TableName() string { return "dialogue_records" }

type Archive struct {
	db *gorm.DB
}

func NewArchive(db *gorm.DB) (*Archive, error) {
	if err := db.AutoMigrate(&ArchiveRecord{}); err != nil {
		return nil, fmt.Errorf("logstore: migrate archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Upsert inserts or refreshes the row for rec's event id.
func (a *Archive) Upsert(rec dialog.LogRecord) error {
	row := ArchiveRecord{
		EventID:        rec.ID,
		Code:           rec.Code,
		Player:         rec.Player,
		Name:           rec.Name,
		Text:           rec.Text,
		TranslatedName: rec.TranslatedName,
		TranslatedText: rec.TranslatedText,
		Timestamp:      rec.Timestamp,
	}
	return a.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"code", "player", "name", "text",
			"translated_name", "translated_text", "timestamp", "updated_at",
		}),
	}).Create(&row).Error
}

// Search matches q against original and translated text and speaker names,
// newest first.
func (a *Archive) Search(q string, limit int) ([]ArchiveRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	pattern := "%" + q + "%"
	var rows []ArchiveRecord
	err := a.db.
		Where("text LIKE ? OR translated_text LIKE ? OR name LIKE ?", pattern, pattern, pattern).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// OnRecordFinalized mirrors every finalized record into the archive. Failures
// are logged and never propagate into the pipeline.
func (a *Archive) OnRecordFinalized(rec dialog.LogRecord, _ bool) {
	if err := a.Upsert(rec); err != nil {
		log.Printf("logstore: archive record %s: %v", rec.ID, err)
	}
}
