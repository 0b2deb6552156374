package ingest

import (
	"context"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

// TableCount is the stored row count of one entity table.
type TableCount struct {
	Entity string `json:"entity"`
	Rows   int64  `json:"rows"`
	Exists bool   `json:"exists"`
}

// TableCounts returns the row count of every registered entity table, in
// dependency order. Tables that were never created are reported with
// Exists=false.
func TableCounts(ctx context.Context, s store.Store) ([]TableCount, error) {
	defs := core.All()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	missing, err := store.MissingTables(ctx, s, names...)
	if err != nil {
		return nil, store.Wrap("query", "", err)
	}
	absent := make(map[string]bool, len(missing))
	for _, m := range missing {
		absent[m] = true
	}

	counts := make([]TableCount, 0, len(defs))
	for _, name := range names {
		tc := TableCount{Entity: name, Exists: !absent[name]}
		if tc.Exists {
			n, err := store.CountRows(ctx, s, name)
			if err != nil {
				return nil, store.Wrap("query", name, err)
			}
			tc.Rows = n
		}
		counts = append(counts, tc)
	}
	return counts, nil
}
