package report

import (
	"context"
	"errors"
	"testing"

	"cooperativa-reports/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopMembersTruncatesToN(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		topMembers: []models.RankingEntry{
			{EntityID: 1, Label: "Ana", Measure: 900},
			{EntityID: 2, Label: "Luis", Measure: 700},
			{EntityID: 3, Label: "Rosa", Measure: 500},
		},
	}
	ranker := NewRanker(st, capsFor(st), NewDiagnostics())

	entries := ranker.TopMembers(context.Background(), marchWindow(), 2)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ana", entries[0].Label)
}

func TestTopMembersEmptyWhenSourceAbsent(t *testing.T) {
	st := &fakeStore{
		tables:     []string{"socios"},
		topMembers: []models.RankingEntry{{EntityID: 1, Label: "Ana", Measure: 900}},
	}
	diag := NewDiagnostics()
	ranker := NewRanker(st, capsFor(st), diag)

	entries := ranker.TopMembers(context.Background(), marchWindow(), 5)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.NotEmpty(t, diag.Notes())
}

func TestTopMembersEmptyOnQueryError(t *testing.T) {
	st := &fakeStore{tables: allTables(), queryErr: errors.New("boom")}
	ranker := NewRanker(st, capsFor(st), NewDiagnostics())

	entries := ranker.TopMembers(context.Background(), marchWindow(), 5)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestMemberPerformanceFallsBackToRoster(t *testing.T) {
	st := &fakeStore{
		tables: []string{"socios"}, // no ventas/aportes yet
		performance: []models.RankingEntry{
			{EntityID: 1, Label: "Ana", Measure: 900, SecondaryMeasure: 50},
			{EntityID: 2, Label: "Luis", Measure: 700, SecondaryMeasure: 30},
		},
	}
	ranker := NewRanker(st, capsFor(st), NewDiagnostics())

	entries := ranker.MemberPerformance(context.Background(), marchWindow())
	require.Len(t, entries, 2)

	// roster enumerates members with zeroed measures
	assert.Equal(t, "Ana", entries[0].Label)
	assert.Zero(t, entries[0].Measure)
	assert.Zero(t, entries[1].SecondaryMeasure)
}

func TestMemberPerformanceWithMeasures(t *testing.T) {
	st := &fakeStore{
		tables: allTables(),
		performance: []models.RankingEntry{
			{EntityID: 1, Label: "Ana", Measure: 900, SecondaryMeasure: 50},
			{EntityID: 2, Label: "Luis", Measure: 0, SecondaryMeasure: 0},
		},
	}
	ranker := NewRanker(st, capsFor(st), NewDiagnostics())

	entries := ranker.MemberPerformance(context.Background(), marchWindow())
	require.Len(t, entries, 2)
	assert.Equal(t, 900.0, entries[0].Measure)
	assert.Zero(t, entries[1].Measure, "inactive sellers stay listed at zero")
}
