package specification

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HasExpertiseTag filters lawyers whose expertise_tags jsonb array contains
// the tag. Used to pre-filter candidates by case area or subarea.
type HasExpertiseTag struct {
	Tag string
}

func (s HasExpertiseTag) Apply(db *gorm.DB) *gorm.DB {
	val, _ := json.Marshal([]string{s.Tag})
	return db.Where("expertise_tags @> ?", string(val))
}

// HasAnyExpertiseTag matches if any of the tags is present.
type HasAnyExpertiseTag struct {
	Tags []string
}

func (s HasAnyExpertiseTag) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Tags) == 0 {
		return db
	}
	conds := make([]string, 0, len(s.Tags))
	args := make([]interface{}, 0, len(s.Tags))
	for _, tag := range s.Tags {
		val, _ := json.Marshal([]string{tag})
		conds = append(conds, "expertise_tags @> ?")
		args = append(args, string(val))
	}
	return db.Where(strings.Join(conds, " OR "), args...)
}

// WithinBoundingBox pre-filters by a lat/lon box around the case location.
// The box over-selects slightly; exact haversine scoring happens in the
// ranking engine.
type WithinBoundingBox struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

func (s WithinBoundingBox) Apply(db *gorm.DB) *gorm.DB {
	if s.RadiusKm <= 0 {
		return db
	}
	latDelta := s.RadiusKm / 111.0
	cosLat := math.Cos(s.Latitude * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonDelta := s.RadiusKm / (111.0 * cosLat)
	return db.
		Where("latitude BETWEEN ? AND ?", s.Latitude-latDelta, s.Latitude+latDelta).
		Where("longitude BETWEEN ? AND ?", s.Longitude-lonDelta, s.Longitude+lonDelta)
}

// ExcludeIDs filters out specific lawyers, e.g. ones the client already
// rejected.
type ExcludeIDs struct {
	IDs []uuid.UUID
}

func (s ExcludeIDs) Apply(db *gorm.DB) *gorm.DB {
	if len(s.IDs) == 0 {
		return db
	}
	return db.Where("id NOT IN ?", s.IDs)
}

// ByLawyerIDs filters child rows by their owning lawyer.
type ByLawyerIDs struct {
	IDs []uuid.UUID
}

func (s ByLawyerIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("lawyer_id IN ?", s.IDs)
}

// ByCaseID filters rows belonging to one case.
type ByCaseID struct {
	ID uuid.UUID
}

func (s ByCaseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("case_id = ?", s.ID)
}
