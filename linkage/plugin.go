package linkage

import (
	"errors"
	"fmt"
	"plugin"
)

// UnitSymbol is the exported name Open looks up in a plugin. A plugin exports
// either a Unit variable or a func() Unit:
//
//	var SymbolUnit linkage.Unit = &linkage.StaticUnit{Name: "http", Tables: ...}
const UnitSymbol = "SymbolUnit"

// ErrNoUnit indicates a plugin without a usable SymbolUnit export.
var ErrNoUnit = errors.New("linkage: plugin does not export a symbol unit")

// Open loads the plugin at path and returns its Unit. Plugin init functions
// run during loading; tables that call Register from init bind to
// symbol.Global at that point.
func Open(path string) (Unit, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(UnitSymbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoUnit)
	}
	return unitFromSymbol(path, sym)
}

func unitFromSymbol(path string, sym any) (Unit, error) {
	switch v := sym.(type) {
	case *Unit:
		if v != nil && *v != nil {
			return *v, nil
		}
	case func() Unit:
		if u := v(); u != nil {
			return u, nil
		}
	case Unit:
		return v, nil
	}
	return nil, fmt.Errorf("%s: %s has type %T: %w", path, UnitSymbol, sym, ErrNoUnit)
}

// Load opens the plugin at path and attaches its unit.
func (h *Host) Load(path string) (Attachment, error) {
	u, err := Open(path)
	if err != nil {
		return Attachment{}, err
	}
	return h.Attach(u)
}
