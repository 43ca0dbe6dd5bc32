package models

// Account is a named money bucket with a stored running balance.
//
// Balance is adjusted incrementally on every transaction insert and delete;
// it is never recomputed from history. InitialBalance keeps the opening
// figure so drift can be measured against the transaction log.
type Account struct {
	Base
	Name           string  `gorm:"not null;index" json:"name"`
	Balance        float64 `gorm:"not null;default:0" json:"balance"`
	InitialBalance float64 `gorm:"not null;default:0" json:"initial_balance"`
}
