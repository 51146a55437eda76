package catalog

import (
	"errors"
	"fmt"
)

// Direction is one of the two travel directions between the USA and Canada
type Direction string

const (
	// DirectionUSAToCanada selects rules for entering Canada from the USA
	DirectionUSAToCanada Direction = "usaToCanada"
	// DirectionCanadaToUSA selects rules for entering the USA from Canada
	DirectionCanadaToUSA Direction = "canadaToUsa"
)

// Directions lists all directions in their canonical order
var Directions = []Direction{DirectionUSAToCanada, DirectionCanadaToUSA}

// Status is the regulatory status of an item for one direction
type Status string

const (
	// StatusAllowed means the item may cross, possibly with declaration or duty
	StatusAllowed Status = "allowed"
	// StatusRestricted means the item may cross only within limits or with permits
	StatusRestricted Status = "restricted"
	// StatusProhibited means the item may not cross
	StatusProhibited Status = "prohibited"
)

// Statuses lists all statuses in their canonical order
var Statuses = []Status{StatusAllowed, StatusRestricted, StatusProhibited}

// QuantityPeriod is the period a quantity limit applies to
type QuantityPeriod string

const (
	// PeriodPerPerson limits the quantity each traveller may carry
	PeriodPerPerson QuantityPeriod = "per person"
	// PeriodPerTrip limits the quantity per crossing
	PeriodPerTrip QuantityPeriod = "per trip"
	// PeriodPerDay limits the quantity per calendar day
	PeriodPerDay QuantityPeriod = "per day"
)

// SourceType identifies the agency publishing an official source
type SourceType string

const (
	// SourceCBSA is the Canada Border Services Agency
	SourceCBSA SourceType = "CBSA"
	// SourceCBP is U.S. Customs and Border Protection
	SourceCBP SourceType = "CBP"
	// SourceOther is any other publisher, e.g. CFIA or USDA
	SourceOther SourceType = "other"
)

var (
	// ErrUnknownDirection is returned when a direction string is not recognized
	ErrUnknownDirection = errors.New("unknown direction")
	// ErrUnknownStatus is returned when a status string is not recognized
	ErrUnknownStatus = errors.New("unknown status")
)

// ParseDirection converts a user-supplied string to a Direction.
// Empty input selects DirectionUSAToCanada.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "":
		return DirectionUSAToCanada, nil
	case DirectionUSAToCanada, DirectionCanadaToUSA:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// ParseStatus converts a user-supplied string to a Status. Empty input returns an empty Status,
// which callers treat as "no status filter".
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "", StatusAllowed, StatusRestricted, StatusProhibited:
		return Status(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// QuantityLimit caps how much of an item may cross
type QuantityLimit struct {
	Amount float64        `yaml:"amount" json:"amount"`
	Unit   string         `yaml:"unit" json:"unit"`
	Period QuantityPeriod `yaml:"period" json:"period"`
}

// Rule describes how an item is regulated in one direction
type Rule struct {
	Status              Status         `yaml:"status" json:"status"`
	QuantityLimit       *QuantityLimit `yaml:"quantityLimit,omitempty" json:"quantityLimit,omitempty"`
	AgeRestriction      *int           `yaml:"ageRestriction,omitempty" json:"ageRestriction,omitempty"`
	SpecialRequirements []string       `yaml:"specialRequirements,omitempty" json:"specialRequirements,omitempty"`
	DeclarationRequired bool           `yaml:"declarationRequired" json:"declarationRequired"`
	DutyApplies         bool           `yaml:"dutyApplies" json:"dutyApplies"`
	Notes               string         `yaml:"notes,omitempty" json:"notes,omitempty"`
	InheritedFrom       string         `yaml:"inheritedFrom,omitempty" json:"inheritedFrom,omitempty"`
}

// HasQuantityLimit reports whether the rule carries a quantity limit
func (r Rule) HasQuantityLimit() bool {
	return r.QuantityLimit != nil
}

// HasAgeRestriction reports whether the rule carries a non-zero minimum age.
// An age of zero is treated as no restriction.
func (r Rule) HasAgeRestriction() bool {
	return r.AgeRestriction != nil && *r.AgeRestriction > 0
}

// SourceRef points to an official publication backing an entry
type SourceRef struct {
	Name string     `yaml:"name" json:"name"`
	URL  string     `yaml:"url" json:"url"`
	Type SourceType `yaml:"type" json:"type"`
}

// Entry is one catalog record describing border-crossing rules for an item.
// Entries are immutable once loaded.
type Entry struct {
	ID                 string      `yaml:"id" json:"id"`
	Name               string      `yaml:"name" json:"name"`
	Category           string      `yaml:"category" json:"category"`
	Aliases            []string    `yaml:"aliases" json:"aliases"`
	ParentRegulationID string      `yaml:"parentRegulation,omitempty" json:"parentRegulation,omitempty"`
	USAToCanada        Rule        `yaml:"usaToCanada" json:"usaToCanada"`
	CanadaToUSA        Rule        `yaml:"canadaToUsa" json:"canadaToUsa"`
	LastUpdated        string      `yaml:"lastUpdated" json:"lastUpdated"`
	Sources            []SourceRef `yaml:"officialSources" json:"officialSources"`
}

// Rule returns the entry's rule for the given direction. An empty direction means
// DirectionUSAToCanada, as in ParseDirection. An unknown direction yields the zero Rule,
// whose empty status matches no status filter.
func (e *Entry) Rule(d Direction) Rule {
	switch d {
	case DirectionUSAToCanada, "":
		return e.USAToCanada
	case DirectionCanadaToUSA:
		return e.CanadaToUSA
	default:
		return Rule{}
	}
}

// Category groups catalog entries. ItemCount is denormalized and may be stale.
type Category struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	ItemCount   int    `yaml:"itemCount" json:"itemCount"`
}
