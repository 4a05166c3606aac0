package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	assert.Equal(t, "hiring-in-2026", NormalizeSlug("Hiring-In-2026"))
	assert.Equal(t, "remote-work", NormalizeSlug("  remote-work  "))
	assert.Equal(t, "", NormalizeSlug("   "))
}
