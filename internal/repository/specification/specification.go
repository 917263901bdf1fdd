package specification

import "gorm.io/gorm"

// Specification is a composable query filter. Repositories apply a list
// of them onto a base query instead of growing ad-hoc finder methods.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
