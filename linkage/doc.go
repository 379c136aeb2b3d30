// Package linkage shares one symbol registry across separately built units.
//
// Symbols compare by identity, so every unit in a process must resolve its
// sites against the same Registry. Packages linked into the main binary get
// that for free through symbol.Global. Units loaded at run time (Go plugins,
// or tables assembled by an embedding host) are attached explicitly:
//
//	host := linkage.NewHost(symbol.Global())
//	if _, err := host.Load("./ext/http.so"); err != nil {
//		return err
//	}
//
// Attach binds each of the unit's tables to the host registry before
// registering it. A table already bound elsewhere is rejected with
// symbol.ErrDisjointRegistry; its Symbols would never compare equal to the
// host's.
package linkage
