package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	pgvector "github.com/pgvector/pgvector-go"
)

// RatingAttributes is the fixed set of rating axes, in display order. Every
// persisted record carries exactly these five keys.
var RatingAttributes = []string{"aroma", "flavor", "acidity", "body", "sweetness"}

// Rating bounds. New records default every attribute to RatingDefault.
const (
	RatingMin     = 1
	RatingMax     = 10
	RatingDefault = 5
)

// FlavorVocabulary is the fixed tag vocabulary the flavor picker offers.
var FlavorVocabulary = []string{
	"Chocolate", "Nuts", "Caramel", "Fruity", "Citrus",
	"Floral", "Spiced", "Herbal", "Toasted", "Honey",
}

// UngroupedLabel is the display bucket for records without a group. It is a
// filtering sentinel only; the stored group value stays nil or empty.
const UngroupedLabel = "Ungrouped"

// DefaultGroups is the built-in group set shown alongside groups discovered
// from stored records.
var DefaultGroups = []string{"Espresso", "Filter", "Single Origin"}

// RatingsMap is a custom type for handling the five-axis rating map in JSONB
type RatingsMap map[string]int

// Value implements the driver.Valuer interface
func (m RatingsMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *RatingsMap) Scan(value interface{}) error {
	if value == nil {
		*m = RatingsMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// DefaultRatings returns a map with every attribute at the neutral default.
func DefaultRatings() RatingsMap {
	m := make(RatingsMap, len(RatingAttributes))
	for _, key := range RatingAttributes {
		m[key] = RatingDefault
	}
	return m
}

// Normalize returns a copy holding exactly the five fixed attribute keys.
// Missing attributes are filled with the neutral default; unknown keys or
// out-of-range values are rejected.
func (m RatingsMap) Normalize() (RatingsMap, error) {
	for key := range m {
		if !isRatingAttribute(key) {
			return nil, fmt.Errorf("unknown rating attribute %q", key)
		}
	}

	out := make(RatingsMap, len(RatingAttributes))
	for _, key := range RatingAttributes {
		value, ok := m[key]
		if !ok {
			value = RatingDefault
		}
		if value < RatingMin || value > RatingMax {
			return nil, fmt.Errorf("rating %q out of range: %d", key, value)
		}
		out[key] = value
	}
	return out, nil
}

// Vector projects the ratings onto a fixed-order float vector for
// similarity queries. Attribute order follows RatingAttributes.
func (m RatingsMap) Vector() pgvector.Vector {
	values := make([]float32, len(RatingAttributes))
	for i, key := range RatingAttributes {
		values[i] = float32(m[key])
	}
	return pgvector.NewVector(values)
}

func isRatingAttribute(key string) bool {
	for _, attr := range RatingAttributes {
		if attr == key {
			return true
		}
	}
	return false
}

// FlavorList is a custom type for handling the flavor tag set in JSONB.
// Order is insertion order; membership is what matters.
type FlavorList []string

// Value implements the driver.Valuer interface
func (l FlavorList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *FlavorList) Scan(value interface{}) error {
	if value == nil {
		*l = FlavorList{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Has reports whether the tag is currently selected.
func (l FlavorList) Has(tag string) bool {
	for _, f := range l {
		if f == tag {
			return true
		}
	}
	return false
}

// Toggle flips membership of the tag: selecting an already-selected tag
// removes it. Toggling twice restores the original membership.
func (l FlavorList) Toggle(tag string) FlavorList {
	if !l.Has(tag) {
		return append(append(FlavorList{}, l...), tag)
	}
	out := make(FlavorList, 0, len(l)-1)
	for _, f := range l {
		if f != tag {
			out = append(out, f)
		}
	}
	return out
}

// IsKnownFlavor reports whether the tag belongs to the fixed vocabulary.
func IsKnownFlavor(tag string) bool {
	for _, f := range FlavorVocabulary {
		if f == tag {
			return true
		}
	}
	return false
}

// TastingRecord is a single user-authored evaluation of one coffee sample.
// IDs are time-based and strictly monotonic; they are assigned at save time
// and never reused. Deletion is permanent, with no tombstone.
type TastingRecord struct {
	ID         int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Origin     string          `gorm:"size:255;not null" json:"origin"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	Group      *string         `gorm:"column:group_name;size:100" json:"group,omitempty"`
	Date       time.Time       `gorm:"not null" json:"date"`
	Ratings    RatingsMap      `gorm:"type:jsonb;not null;default:'{}'" json:"ratings"`
	Flavors    FlavorList      `gorm:"type:jsonb;not null;default:'[]'" json:"flavors"`
	ChartImage string          `gorm:"type:text" json:"chart_image,omitempty"`
	RatingVec  pgvector.Vector `gorm:"type:vector(5)" json:"-"`
}

// GroupLabel returns the display bucket for the record: the stored group, or
// the Ungrouped sentinel when the group is absent or empty.
func (r *TastingRecord) GroupLabel() string {
	if r.Group == nil || strings.TrimSpace(*r.Group) == "" {
		return UngroupedLabel
	}
	return *r.Group
}

// MissingFields lists the required fields that are empty, in display order.
func (r *TastingRecord) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(r.Name) == "" {
		missing = append(missing, "Name")
	}
	if strings.TrimSpace(r.Origin) == "" {
		missing = append(missing, "Origin")
	}
	return missing
}
