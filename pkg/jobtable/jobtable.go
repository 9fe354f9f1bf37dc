/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

// Package jobtable maps batch product categories to their storage partitions.
// The legacy system selected table names dynamically per batch type; here the
// category is a closed enum and the mapping is a pure function.
package jobtable

import (
	"fmt"
	"strings"
)

// Kind is a batch product category.
type Kind string

const (
	BusinessCards Kind = "business_cards"
	Flyers        Kind = "flyers"
	Postcards     Kind = "postcards"
	Posters       Kind = "posters"
	Sleeves       Kind = "sleeves"
	Stickers      Kind = "stickers"
	Covers        Kind = "covers"
	Boxes         Kind = "boxes"

	// Production is the default partition for jobs that do not belong to a
	// batch product line.
	Production Kind = "production"
)

// DefaultTable is the storage partition used when no category is supplied.
const DefaultTable = "production_jobs"

var kinds = map[Kind]string{
	BusinessCards: "business_card_jobs",
	Flyers:        "flyer_jobs",
	Postcards:     "postcard_jobs",
	Posters:       "poster_jobs",
	Sleeves:       "sleeve_jobs",
	Stickers:      "sticker_jobs",
	Covers:        "cover_jobs",
	Boxes:         "box_jobs",
	Production:    DefaultTable,
}

// TableFor returns the storage partition for a batch category.
func TableFor(kind Kind) (string, error) {
	if table, ok := kinds[kind]; ok {
		return table, nil
	}
	return "", fmt.Errorf("unknown job category %q", kind)
}

// Normalize resolves a caller-supplied table name to a known partition,
// defaulting to the production partition when empty.
func Normalize(tableName string) (string, error) {
	if tableName == "" {
		return DefaultTable, nil
	}
	name := strings.ToLower(strings.TrimSpace(tableName))
	for _, table := range kinds {
		if table == name {
			return table, nil
		}
	}
	return "", fmt.Errorf("unknown job table %q", tableName)
}

// Kinds lists every known category.
func Kinds() []Kind {
	result := make([]Kind, 0, len(kinds))
	for kind := range kinds {
		result = append(result, kind)
	}
	return result
}
