package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/crisis-service/internal/domain"
)

// CrisisRecord is the gorm row model for the embedded store. List fields are
// kept as JSON-encoded text columns.
type CrisisRecord struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Title           string     `gorm:"column:title;type:text;not null;default:''"`
	Description     string     `gorm:"column:description;type:text;not null;default:''"`
	Severity        string     `gorm:"column:severity;type:text;not null;default:''"`
	Status          string     `gorm:"column:status;type:text;not null;default:''"`
	DateReported    time.Time  `gorm:"column:date_reported;not null;index"`
	DateResolved    *time.Time `gorm:"column:date_resolved"`
	Resolution      *string    `gorm:"column:resolution;type:text"`
	ReportedBy      *string    `gorm:"column:reported_by;type:text"`
	AssignedTo      *string    `gorm:"column:assigned_to;type:text"`
	Tags            []string   `gorm:"column:tags;type:text;serializer:json"`
	AffectedSystems []string   `gorm:"column:affected_systems;type:text;serializer:json"`
}

func (CrisisRecord) TableName() string {
	return "crises"
}

var crisisUpdateColumns = []string{
	"title", "description", "severity", "status", "date_resolved",
	"resolution", "reported_by", "assigned_to", "tags", "affected_systems",
}

type sqliteCrisisRepository struct {
	db *gorm.DB
}

// NewSQLiteCrisisRepository instantiates a repository on a gorm SQLite handle.
func NewSQLiteCrisisRepository(db *gorm.DB) CrisisRepository {
	return &sqliteCrisisRepository{db: db}
}

func (r *sqliteCrisisRepository) Create(ctx context.Context, crisis *domain.Crisis) error {
	record := toRecord(crisis)
	record.ID = 0
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return mapSQLiteError(err)
	}
	crisis.ID = record.ID
	return nil
}

func (r *sqliteCrisisRepository) GetByID(ctx context.Context, id int64) (*domain.Crisis, error) {
	var record CrisisRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	crisis := fromRecord(&record)
	return &crisis, nil
}

func (r *sqliteCrisisRepository) List(ctx context.Context) ([]domain.Crisis, error) {
	var records []CrisisRecord
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Crisis, 0, len(records))
	for i := range records {
		result = append(result, fromRecord(&records[i]))
	}
	return result, nil
}

// Search evaluates in memory: SQLite's LOWER only folds ASCII.
func (r *sqliteCrisisRepository) Search(ctx context.Context, query string) ([]domain.Crisis, error) {
	all, err := r.List(ctx)
	if err != nil || query == "" {
		return all, err
	}
	result := []domain.Crisis{}
	for i := range all {
		if all[i].MatchesQuery(query) {
			result = append(result, all[i])
		}
	}
	return result, nil
}

func (r *sqliteCrisisRepository) Filter(ctx context.Context, filter domain.CrisisFilter) ([]domain.Crisis, error) {
	all, err := r.List(ctx)
	if err != nil || filter.IsEmpty() {
		return all, err
	}
	result := []domain.Crisis{}
	for i := range all {
		if filter.Matches(&all[i]) {
			result = append(result, all[i])
		}
	}
	return result, nil
}

// Update replaces every mutable column. date_reported is never rewritten.
func (r *sqliteCrisisRepository) Update(ctx context.Context, crisis *domain.Crisis) error {
	record := toRecord(crisis)
	record.ID = 0
	res := r.db.WithContext(ctx).
		Model(&CrisisRecord{}).
		Where("id = ?", crisis.ID).
		Select(crisisUpdateColumns).
		Updates(&record)
	if res.Error != nil {
		return mapSQLiteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteCrisisRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CrisisRecord{})
	if res.Error != nil {
		return mapSQLiteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteCrisisRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CrisisRecord{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *sqliteCrisisRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func mapSQLiteError(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return fmt.Errorf("%w: %s", ErrConflict, msg)
	}
	return err
}

func toRecord(c *domain.Crisis) CrisisRecord {
	return CrisisRecord{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Severity:        c.Severity,
		Status:          c.Status,
		DateReported:    c.DateReported,
		DateResolved:    c.DateResolved,
		Resolution:      c.Resolution,
		ReportedBy:      c.ReportedBy,
		AssignedTo:      c.AssignedTo,
		Tags:            domain.CloneStrings(c.Tags),
		AffectedSystems: domain.CloneStrings(c.AffectedSystems),
	}
}

func fromRecord(rec *CrisisRecord) domain.Crisis {
	return domain.Crisis{
		ID:              rec.ID,
		Title:           rec.Title,
		Description:     rec.Description,
		Severity:        rec.Severity,
		Status:          rec.Status,
		DateReported:    rec.DateReported,
		DateResolved:    rec.DateResolved,
		Resolution:      rec.Resolution,
		ReportedBy:      rec.ReportedBy,
		AssignedTo:      rec.AssignedTo,
		Tags:            rec.Tags,
		AffectedSystems: rec.AffectedSystems,
	}
}
