package match

import (
	"errors"

	"gorm.io/gorm"
)

// MatchRepository is the match state store: get/save by id, one document per
// match. Save must be compare-and-swap on the aggregate version so that two
// concurrent read-modify-write cycles cannot silently lose an update.
type MatchRepository interface {
	CreateMatch(m *Match) error
	// GetMatchByID returns (nil, nil) when no match exists for the id.
	GetMatchByID(id string) (*Match, error)
	// SaveMatch writes the aggregate only if the stored version still equals
	// the version the caller read; otherwise it returns ErrVersionConflict.
	SaveMatch(m *Match) error
	GetMatches(filters map[string]interface{}, page, pageSize int) ([]Match, int64, error)
}

// GormMatchRepository implements MatchRepository using GORM.
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GormMatchRepository.
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// CreateMatch inserts a new match document.
func (r *GormMatchRepository) CreateMatch(m *Match) error {
	return r.db.Create(m).Error
}

// GetMatchByID retrieves a match by id.
func (r *GormMatchRepository) GetMatchByID(id string) (*Match, error) {
	var m Match
	result := r.db.First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &m, nil
}

// SaveMatch persists the aggregate with an optimistic version check. The
// caller's in-memory version is bumped only on success.
func (r *GormMatchRepository) SaveMatch(m *Match) error {
	readVersion := m.Version
	m.Version = readVersion + 1

	result := r.db.Model(&Match{}).
		Where("id = ? AND version = ?", m.ID, readVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(m)
	if result.Error != nil {
		m.Version = readVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		m.Version = readVersion
		return ErrVersionConflict
	}
	return nil
}

// GetMatches retrieves matches based on filters with pagination.
func (r *GormMatchRepository) GetMatches(filters map[string]interface{}, page, pageSize int) ([]Match, int64, error) {
	var matches []Match
	var total int64

	query := r.db.Model(&Match{})
	for key, value := range filters {
		query = query.Where(key+" = ?", value)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	result := query.Order("scheduled_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&matches)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	return matches, total, nil
}
