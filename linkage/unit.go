package linkage

import "github.com/roach88/symtab/symbol"

// Unit is a separately built body of code that contributes symbol tables.
type Unit interface {
	UnitName() string
	SymbolTables() []*symbol.Table
}

// StaticUnit is a Unit assembled from tables already in hand.
type StaticUnit struct {
	Name   string
	Tables []*symbol.Table
}

// UnitName implements Unit.
func (u *StaticUnit) UnitName() string { return u.Name }

// SymbolTables implements Unit.
func (u *StaticUnit) SymbolTables() []*symbol.Table { return u.Tables }
