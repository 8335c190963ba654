package stalls

import (
	"testing"

	"expo-portal/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func stallAt(number string, x, y *int) models.Stall {
	return models.Stall{StallNumber: models.FlexString(number), XPosition: x, YPosition: y, Status: models.StallAvailable}
}

func TestResolveOpenSides_ExplicitListWinsOverLegacyFlags(t *testing.T) {
	stall := models.Stall{
		OpenSides:     []string{"left", "bottom"},
		OpenSideTop:   true,
		OpenSideRight: true,
	}

	assert.Equal(t, Sides{Left, Bottom}, ResolveOpenSides(stall))
}

func TestResolveOpenSides_ExplicitEmptyList(t *testing.T) {
	stall := models.Stall{OpenSides: []string{}, OpenSideTop: true}

	assert.Empty(t, ResolveOpenSides(stall))
}

func TestResolveOpenSides_LegacyFlags(t *testing.T) {
	stall := models.Stall{OpenSideLeft: true, OpenSideTop: true}

	assert.Equal(t, Sides{Top, Left}, ResolveOpenSides(stall))
}

func TestResolveOpenSides_Default(t *testing.T) {
	assert.Equal(t, Sides{Top, Right, Bottom}, ResolveOpenSides(models.Stall{}))
}

func TestOpenSidesCount(t *testing.T) {
	assert.Equal(t, 3, OpenSidesCount(models.Stall{}))
	assert.Equal(t, 4, OpenSidesCount(models.Stall{OpenSidesCount: 4}))
	assert.Equal(t, 1, OpenSidesCount(models.Stall{OpenSides: []string{"top"}}))
}

func TestComputeStatus_Precedence(t *testing.T) {
	owned := []models.Stall{{StallNumber: "A1"}}
	booked := []models.FlexString{"A1", "A2"}
	m := NewMembership(owned, booked)

	tests := []struct {
		name  string
		stall models.Stall
		want  Status
	}{
		{"owned beats booked", models.Stall{StallNumber: "A1", Status: models.StallBooked}, StatusOwned},
		{"booked by other", models.Stall{StallNumber: "A2", Status: models.StallAvailable}, StatusBooked},
		{"unavailable", models.Stall{StallNumber: "A3", Status: models.StallUnavailable}, StatusUnavailable},
		{"available", models.Stall{StallNumber: "A4", Status: models.StallAvailable}, StatusAvailable},
		{"server booked flag alone is available", models.Stall{StallNumber: "A5", Status: models.StallBooked}, StatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ComputeStatus(tt.stall))
		})
	}
}

func TestSelectionStatus(t *testing.T) {
	m := NewMembership([]models.Stall{{StallNumber: "A1"}}, []models.FlexString{"A2"})

	assert.Equal(t, StatusOwned, m.SelectionStatus(models.Stall{StallNumber: "A1", Status: models.StallBooked}))
	assert.Equal(t, StatusBooked, m.SelectionStatus(models.Stall{StallNumber: "A2", Status: models.StallAvailable}))
	assert.Equal(t, StatusBooked, m.SelectionStatus(models.Stall{StallNumber: "A5", Status: models.StallBooked}))
	assert.Equal(t, StatusUnavailable, m.SelectionStatus(models.Stall{StallNumber: "A6", Status: models.StallUnavailable}))
	assert.Equal(t, StatusAvailable, m.SelectionStatus(models.Stall{StallNumber: "A7", Status: models.StallAvailable}))
}

func TestBuildGrid_RowAndColumnOrder(t *testing.T) {
	stalls := []models.Stall{
		stallAt("C", intPtr(1), intPtr(2)),
		stallAt("B", intPtr(2), intPtr(1)),
		stallAt("A", intPtr(1), intPtr(1)),
	}

	grid := BuildGrid(stalls, nil, nil)

	require.Len(t, grid.Rows, 2)
	assert.Equal(t, 1, grid.Rows[0].Y)
	assert.Equal(t, 2, grid.Rows[1].Y)
	require.Len(t, grid.Rows[0].Cells, 2)
	assert.Equal(t, "A", grid.Rows[0].Cells[0].Number())
	assert.Equal(t, "B", grid.Rows[0].Cells[1].Number())
	assert.Equal(t, "C", grid.Rows[1].Cells[0].Number())
}

func TestBuildGrid_MissingPositions(t *testing.T) {
	stalls := []models.Stall{
		stallAt("x2", intPtr(2), nil),
		stallAt("nopos", nil, nil),
		stallAt("zero-y", intPtr(1), intPtr(0)),
		stallAt("row3", nil, intPtr(3)),
	}

	grid := BuildGrid(stalls, nil, nil)

	require.Len(t, grid.Rows, 2)
	assert.Equal(t, 1, grid.Rows[0].Y)
	var numbers []string
	for _, c := range grid.Rows[0].Cells {
		numbers = append(numbers, c.Number())
	}
	assert.Equal(t, []string{"nopos", "zero-y", "x2"}, numbers)
	assert.Equal(t, 3, grid.Rows[1].Y)
	assert.Equal(t, 4, grid.Len())
}

func TestBuildGrid_StableForTies(t *testing.T) {
	stalls := []models.Stall{
		stallAt("first", intPtr(1), intPtr(1)),
		stallAt("second", intPtr(1), intPtr(1)),
	}

	grid := BuildGrid(stalls, nil, nil)
	assert.Equal(t, "first", grid.Rows[0].Cells[0].Number())
	assert.Equal(t, "second", grid.Rows[0].Cells[1].Number())
}

func TestBuildGrid_DoesNotReorderInput(t *testing.T) {
	stalls := []models.Stall{
		stallAt("B", intPtr(2), intPtr(1)),
		stallAt("A", intPtr(1), intPtr(1)),
	}

	BuildGrid(stalls, nil, nil)
	assert.Equal(t, models.FlexString("B"), stalls[0].StallNumber)
}

func TestBuildGrid_StatusesAndCounts(t *testing.T) {
	stalls := []models.Stall{
		stallAt("A1", intPtr(1), intPtr(1)),
		stallAt("A2", intPtr(2), intPtr(1)),
		stallAt("A3", intPtr(3), intPtr(1)),
	}
	stalls[2].Status = models.StallUnavailable

	grid := BuildGrid(stalls, []models.Stall{{StallNumber: "A1"}}, []models.FlexString{"A2"})

	counts := grid.StatusCounts()
	assert.Equal(t, 1, counts[StatusOwned])
	assert.Equal(t, 1, counts[StatusBooked])
	assert.Equal(t, 1, counts[StatusUnavailable])
	assert.True(t, grid.Rows[0].Cells[0].Selectable())
	assert.False(t, grid.Rows[0].Cells[1].Selectable())
}

func TestSelectHall(t *testing.T) {
	layout := &models.HallLayout{Halls: map[string][]models.Stall{"Hall 1": nil, "Hall 2": nil}}

	assert.Equal(t, "Hall 1", SelectHall(layout, "Hall 1", "Hall 2"))
	assert.Equal(t, "Hall 2", SelectHall(layout, "Hall 9", "Hall 2"))
	assert.Equal(t, "Hall 1", SelectHall(layout, "", "Hall 7"))
	assert.Equal(t, []string{"Hall 1", "Hall 2"}, HallNames(layout))
}
