// Package stalls turns the flat stall list of a hall into the visual grid
// shown on the hall layout page.
package stalls

import (
	"sort"

	"expo-portal/internal/models"
)

type Status string

// Statuses are mutually exclusive; see ComputeStatus for precedence.
const (
	StatusOwned       Status = "my-stall"
	StatusBooked      Status = "booked"
	StatusUnavailable Status = "unavailable"
	StatusAvailable   Status = "available"
)

func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "✓ Available - Click to Book"
	case StatusOwned:
		return "✓ Your Stall"
	case StatusBooked:
		return "✗ Booked"
	default:
		return "✗ Unavailable"
	}
}

type Side string

const (
	Top    Side = "top"
	Right  Side = "right"
	Bottom Side = "bottom"
	Left   Side = "left"
)

// AllSides is the display order of the four edges.
var AllSides = []Side{Top, Right, Bottom, Left}

var defaultOpenSides = []Side{Top, Right, Bottom}

type Sides []Side

func (s Sides) Has(side Side) bool {
	for _, v := range s {
		if v == side {
			return true
		}
	}
	return false
}

// ResolveOpenSides returns the explicit list verbatim when present, the set
// derived from the legacy flags when any flag is set, and {top,right,bottom}
// otherwise.
func ResolveOpenSides(stall models.Stall) Sides {
	if stall.OpenSides != nil {
		sides := make(Sides, 0, len(stall.OpenSides))
		for _, s := range stall.OpenSides {
			sides = append(sides, Side(s))
		}
		return sides
	}

	flags := []struct {
		set  bool
		side Side
	}{
		{stall.OpenSideTop.Bool(), Top},
		{stall.OpenSideRight.Bool(), Right},
		{stall.OpenSideBottom.Bool(), Bottom},
		{stall.OpenSideLeft.Bool(), Left},
	}
	var sides Sides
	for _, f := range flags {
		if f.set {
			sides = append(sides, f.side)
		}
	}
	if len(sides) > 0 {
		return sides
	}

	return append(Sides(nil), defaultOpenSides...)
}

// OpenSidesCount prefers the server-provided count.
func OpenSidesCount(stall models.Stall) int {
	if stall.OpenSidesCount > 0 {
		return stall.OpenSidesCount
	}
	return len(ResolveOpenSides(stall))
}

// Membership indexes the two lists a status is computed against.
type Membership struct {
	owned  map[string]struct{}
	booked map[string]struct{}
}

func NewMembership(companyStalls []models.Stall, bookedStalls []models.FlexString) Membership {
	m := Membership{
		owned:  make(map[string]struct{}, len(companyStalls)),
		booked: make(map[string]struct{}, len(bookedStalls)),
	}
	for _, s := range companyStalls {
		m.owned[s.StallNumber.String()] = struct{}{}
	}
	for _, n := range bookedStalls {
		m.booked[n.String()] = struct{}{}
	}
	return m
}

func (m Membership) Owns(stallNumber string) bool {
	_, ok := m.owned[stallNumber]
	return ok
}

// ComputeStatus applies owned > booked > unavailable > available.
func (m Membership) ComputeStatus(stall models.Stall) Status {
	number := stall.StallNumber.String()
	if _, ok := m.owned[number]; ok {
		return StatusOwned
	}
	if _, ok := m.booked[number]; ok {
		return StatusBooked
	}
	if stall.Status == models.StallUnavailable {
		return StatusUnavailable
	}
	return StatusAvailable
}

// SelectionStatus is the status of a stall opened on its own. Unlike the
// grid it also trusts a booked status on the record itself, which the
// details endpoint reports.
func (m Membership) SelectionStatus(stall models.Stall) Status {
	status := m.ComputeStatus(stall)
	if status == StatusAvailable && stall.Status == models.StallBooked {
		return StatusBooked
	}
	return status
}

// Cell is one rendered stall.
type Cell struct {
	Stall          models.Stall
	Status         Status
	OpenSides      Sides
	OpenSidesCount int
}

func (c Cell) Number() string {
	return c.Stall.StallNumber.String()
}

func (c Cell) Selectable() bool {
	return c.Status == StatusAvailable || c.Status == StatusOwned
}

type Row struct {
	Y     int
	Cells []Cell
}

type Grid struct {
	Rows []Row
}

func (g Grid) Len() int {
	n := 0
	for _, r := range g.Rows {
		n += len(r.Cells)
	}
	return n
}

// StatusCounts tallies cells per status for the legend.
func (g Grid) StatusCounts() map[Status]int {
	counts := map[Status]int{}
	for _, r := range g.Rows {
		for _, c := range r.Cells {
			counts[c.Status]++
		}
	}
	return counts
}

func rowOf(stall models.Stall) int {
	if stall.YPosition == nil || *stall.YPosition == 0 {
		return 1
	}
	return *stall.YPosition
}

func columnOf(stall models.Stall) int {
	if stall.XPosition == nil {
		return 0
	}
	return *stall.XPosition
}

// BuildGrid groups stalls into rows by y position (missing → row 1), orders
// rows ascending and stalls within a row by x position (missing → 0). Ties
// keep input order.
func BuildGrid(stalls []models.Stall, companyStalls []models.Stall, bookedStalls []models.FlexString) Grid {
	membership := NewMembership(companyStalls, bookedStalls)

	byRow := map[int][]models.Stall{}
	for _, s := range stalls {
		y := rowOf(s)
		byRow[y] = append(byRow[y], s)
	}

	ys := make([]int, 0, len(byRow))
	for y := range byRow {
		ys = append(ys, y)
	}
	sort.Ints(ys)

	grid := Grid{Rows: make([]Row, 0, len(ys))}
	for _, y := range ys {
		rowStalls := byRow[y]
		sort.SliceStable(rowStalls, func(i, j int) bool {
			return columnOf(rowStalls[i]) < columnOf(rowStalls[j])
		})

		row := Row{Y: y, Cells: make([]Cell, 0, len(rowStalls))}
		for _, s := range rowStalls {
			row.Cells = append(row.Cells, Cell{
				Stall:          s,
				Status:         membership.ComputeStatus(s),
				OpenSides:      ResolveOpenSides(s),
				OpenSidesCount: OpenSidesCount(s),
			})
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// HallNames returns the halls in display order.
func HallNames(layout *models.HallLayout) []string {
	if layout == nil {
		return nil
	}
	names := make([]string, 0, len(layout.Halls))
	for name := range layout.Halls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectHall picks the requested hall, the default hall, or the first hall
// in display order, in that order of preference.
func SelectHall(layout *models.HallLayout, requested, fallback string) string {
	if layout == nil {
		return fallback
	}
	if _, ok := layout.Halls[requested]; ok && requested != "" {
		return requested
	}
	if _, ok := layout.Halls[fallback]; ok {
		return fallback
	}
	if names := HallNames(layout); len(names) > 0 {
		return names[0]
	}
	return fallback
}
