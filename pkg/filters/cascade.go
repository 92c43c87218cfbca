// Package filters holds the query-filter logic shared by the asset and issue
// listings, chiefly the cascading classification-selector validation.
package filters

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/fleetdesk/fleetdesk/pkg/catalog"
)

// Cascade is the 4-level classification filter as supplied by a caller.
// Empty strings mean "not filtered".
type Cascade struct {
	CategoryID string
	MakeID     string
	ModelID    string
	VariantID  string
}

// ResolveCascade validates a classification filter against the hierarchy and
// returns the effective filter. An unset parent clears every descendant; a
// value that is not a member of its parent's valid set is cleared together
// with its descendants. Both listings apply this before building queries.
func ResolveCascade(store *catalog.Store, c Cascade) (Cascade, error) {
	if c.CategoryID == "" {
		return Cascade{}, nil
	}

	if c.MakeID != "" {
		makes, err := store.ListMakes(c.CategoryID)
		if err != nil {
			return Cascade{}, fmt.Errorf("resolve cascade: %w", err)
		}
		valid := mapset.NewThreadUnsafeSet[string]()
		for _, m := range makes {
			valid.Add(m.ID)
		}
		if !valid.Contains(c.MakeID) {
			c.MakeID = ""
		}
	}
	if c.MakeID == "" {
		c.ModelID = ""
		c.VariantID = ""
		return c, nil
	}

	if c.ModelID != "" {
		models, err := store.ListModels(c.MakeID)
		if err != nil {
			return Cascade{}, fmt.Errorf("resolve cascade: %w", err)
		}
		valid := mapset.NewThreadUnsafeSet[string]()
		for _, m := range models {
			valid.Add(m.ID)
		}
		if !valid.Contains(c.ModelID) {
			c.ModelID = ""
		}
	}
	if c.ModelID == "" {
		c.VariantID = ""
		return c, nil
	}

	if c.VariantID != "" {
		variants, err := store.ListVariants(c.ModelID)
		if err != nil {
			return Cascade{}, fmt.Errorf("resolve cascade: %w", err)
		}
		valid := mapset.NewThreadUnsafeSet[string]()
		for _, v := range variants {
			valid.Add(v.ID)
		}
		if !valid.Contains(c.VariantID) {
			c.VariantID = ""
		}
	}
	return c, nil
}
