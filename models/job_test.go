package models

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "developpeur", NormalizeQuery("développeur"))
	assert.Equal(t, "Engineer", NormalizeQuery("  Engineer  "))
	assert.Equal(t, "", NormalizeQuery("   "))
	assert.Equal(t, "resume", NormalizeQuery("résumé"))
}

func TestBuildSearchQuery_NoFilters(t *testing.T) {
	query, args := BuildSearchQuery("", JobFilters{}, 1, 10)

	assert.Contains(t, query, "WHERE j.active = TRUE")
	assert.NotContains(t, query, "ILIKE")
	assert.Contains(t, query, "ORDER BY j.created_at DESC LIMIT $1 OFFSET $2")
	assert.Equal(t, []interface{}{10, 0}, args)
}

func TestBuildSearchQuery_TextSearch(t *testing.T) {
	query, args := BuildSearchQuery("engineer", JobFilters{}, 1, 10)

	assert.Contains(t, query, "(j.title ILIKE $1 OR j.overview ILIKE $1)")
	assert.Equal(t, "%engineer%", args[0])
}

func TestBuildSearchQuery_AccentFoldedSearch(t *testing.T) {
	_, args := BuildSearchQuery("développeur", JobFilters{}, 1, 10)
	assert.Equal(t, "%developpeur%", args[0])
}

func TestBuildSearchQuery_AllFilters(t *testing.T) {
	filters := JobFilters{
		Types:            []string{"Full-time", "Contract"},
		ExperienceLevels: []string{"Senior"},
		WorkSchedules:    []string{"Remote"},
		Location:         "Toronto",
	}
	query, args := BuildSearchQuery("engineer", filters, 2, 10)

	assert.Contains(t, query, "j.type = ANY($2)")
	assert.Contains(t, query, "j.experience_level = ANY($3)")
	assert.Contains(t, query, "j.work_schedule = ANY($4)")
	assert.Contains(t, query, "j.location = $5")
	assert.Contains(t, query, "LIMIT $6 OFFSET $7")

	assert.Len(t, args, 7)
	assert.Equal(t, "%engineer%", args[0])
	assert.Equal(t, pq.Array([]string{"Full-time", "Contract"}), args[1])
	assert.Equal(t, "Toronto", args[4])
	assert.Equal(t, 10, args[5])
	assert.Equal(t, 10, args[6]) // second page skips one page of rows
}

func TestBuildSearchQuery_LocationAllIsIgnored(t *testing.T) {
	query, _ := BuildSearchQuery("", JobFilters{Location: "all"}, 1, 10)
	assert.NotContains(t, query, "j.location")
}

func TestBuildSearchQuery_PageClamped(t *testing.T) {
	_, args := BuildSearchQuery("", JobFilters{}, 0, 10)
	assert.Equal(t, 0, args[len(args)-1])
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusApplied))
	assert.True(t, ValidStatus(StatusQualified))
	assert.True(t, ValidStatus(StatusInterview))
	assert.True(t, ValidStatus(StatusRejected))
	assert.False(t, ValidStatus("Archived"))
	assert.False(t, ValidStatus("applied"))
}
