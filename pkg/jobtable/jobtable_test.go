/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package jobtable

import (
	"testing"

	"gotest.tools/assert"
)

func TestTableFor(t *testing.T) {
	table, err := TableFor(BusinessCards)
	assert.NilError(t, err)
	assert.Equal(t, table, "business_card_jobs")

	table, err = TableFor(Production)
	assert.NilError(t, err)
	assert.Equal(t, table, DefaultTable)

	_, err = TableFor(Kind("pamphlets"))
	assert.ErrorContains(t, err, "unknown job category")
}

func TestNormalize(t *testing.T) {
	table, err := Normalize("")
	assert.NilError(t, err)
	assert.Equal(t, table, DefaultTable)

	table, err = Normalize("  Flyer_Jobs ")
	assert.NilError(t, err)
	assert.Equal(t, table, "flyer_jobs")

	_, err = Normalize("users")
	assert.ErrorContains(t, err, "unknown job table")
}
