package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "worker", "submit", "follow"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "precompute", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestCommand_Flags(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("category"))
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("input"))

	wait := submitCmd.Flags().Lookup("wait")
	require.NotNil(t, wait)
	assert.Equal(t, "false", wait.DefValue)

	durable := followCmd.Flags().Lookup("durable")
	require.NotNil(t, durable)
	assert.Equal(t, "mietradar-follow", durable.DefValue)
}

func TestSelectedCategories(t *testing.T) {
	t.Cleanup(func() { categories = nil })

	categories = nil
	all, err := selectedCategories()
	require.NoError(t, err)
	assert.Equal(t, domain.Categories, all)

	categories = []string{"wg", "dormitory"}
	cats, err := selectedCategories()
	require.NoError(t, err)
	assert.Equal(t, []domain.DwellingCategory{domain.CategorySharedRoom, domain.CategoryDormitory}, cats)

	categories = []string{"castle"}
	_, err = selectedCategories()
	assert.True(t, errors.Is(err, domain.ErrUnknownCategory))
}

func TestJournal_WritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	j := newJournal(&buf)

	events := []*domain.ObservationEvent{
		{ID: "1", Type: domain.EventObservationAppended, Category: domain.CategoryApartment,
			Observation: &domain.RentObservation{NeighborhoodID: "A", MonthlyRent: 900, AreaSqm: 45}},
		{ID: "2", Type: domain.EventObservationsCleared, Category: domain.CategoryApartment},
	}
	for _, e := range events {
		require.NoError(t, j.handle(context.Background(), e))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var first domain.ObservationEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "A", first.Observation.NeighborhoodID)
	assert.Equal(t, 2, j.total())
}
