package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/farm-prefs/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrInvalidUnit     = errors.New("invalid commodity unit")
	ErrInvalidRegion   = errors.New("invalid region")
	ErrDuplicateUnitID = errors.New("duplicate commodity unit id")
	ErrDuplicateRegion = errors.New("duplicate region id")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateUnits checks names are present and saved ids are unique.
func validateUnits(units []model.CommodityUnit) error {
	seen := make(map[int]bool, len(units))
	for i, unit := range units {
		if strings.TrimSpace(unit.Name) == "" {
			return fmt.Errorf("%w: unit at index %d has no name", ErrInvalidUnit, i)
		}
		if unit.ID == nil {
			continue
		}
		if seen[*unit.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateUnitID, *unit.ID)
		}
		seen[*unit.ID] = true
	}
	return nil
}

// validateRegions checks each region has a positive id and a name.
func validateRegions(regions []model.Region) error {
	seen := make(map[int]bool, len(regions))
	for i, region := range regions {
		if region.ID <= 0 {
			return fmt.Errorf("%w: region at index %d has no id", ErrInvalidRegion, i)
		}
		if strings.TrimSpace(region.Name) == "" {
			return fmt.Errorf("%w: region %d has no name", ErrInvalidRegion, region.ID)
		}
		if seen[region.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateRegion, region.ID)
		}
		seen[region.ID] = true
	}
	return nil
}
