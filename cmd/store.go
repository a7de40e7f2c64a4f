package main

import (
	"github.com/rotisserie/eris"

	"github.com/teatrade/auction-cli/internal/store"
)

// openStore opens the configured SQLite file. Callers own the Close.
func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "open store %s", cfg.Store.Path)
	}
	return st, nil
}
