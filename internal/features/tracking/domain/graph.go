package domain

import (
	"fmt"
	"sort"
)

// defaultEdges is the forward transition graph over the lifecycle statuses.
// Exception statuses are not listed here; they are added to every non-terminal status.
// EMPTY_RETURNED follows OUT_FOR_DELIVERY for door moves where the carrier only reports the empty
// return; DELIVERED itself is terminal. Every edge points forward in the canonical order.
var defaultEdges = map[Status][]Status{
	StatusCreated:                 {StatusBooked},
	StatusBooked:                  {StatusEmptyReleased, StatusPickupScheduled},
	StatusEmptyReleased:           {StatusPickupScheduled, StatusCargoReceivedOrigin},
	StatusPickupScheduled:         {StatusCargoReceivedOrigin},
	StatusCargoReceivedOrigin:     {StatusStuffingInProgress, StatusGatedInOrigin},
	StatusStuffingInProgress:      {StatusStuffedSealed},
	StatusStuffedSealed:           {StatusGatedInOrigin},
	StatusGatedInOrigin:           {StatusCustomsExportInProgress, StatusLoadedOnVessel},
	StatusCustomsExportInProgress: {StatusCustomsExportCleared},
	StatusCustomsExportCleared:    {StatusLoadedOnVessel},
	StatusLoadedOnVessel:          {StatusDepartedOrigin},
	StatusDepartedOrigin:          {StatusInTransit},
	StatusInTransit:               {StatusTransshipmentArrived, StatusArrivedDestinationPort},
	StatusTransshipmentArrived:    {StatusTransshipmentDeparted},
	StatusTransshipmentDeparted:   {StatusArrivedDestinationPort},
	StatusArrivedDestinationPort:  {StatusDischarged},
	StatusDischarged:              {StatusAvailableForPickup, StatusCustomsImportInProgress},
	StatusAvailableForPickup:      {StatusCustomsImportInProgress, StatusReleasedFromTerminal},
	StatusCustomsImportInProgress: {StatusCustomsImportCleared},
	StatusCustomsImportCleared:    {StatusReleasedFromTerminal},
	StatusReleasedFromTerminal:    {StatusOutForDelivery},
	StatusOutForDelivery:          {StatusDelivered, StatusEmptyReturned},
	StatusDelivered:               {},
	StatusEmptyReturned:           {StatusClosed},
	StatusClosed:                  {},
}

// Graph holds the legal status-to-status moves. It is immutable after construction.
type Graph struct {
	edges map[Status][]Status
}

// NewGraph builds a graph from the given forward edges and validates it.
func NewGraph(edges map[Status][]Status) (*Graph, error) {
	g := &Graph{edges: make(map[Status][]Status, len(edges))}
	for from, tos := range edges {
		cp := make([]Status, len(tos))
		copy(cp, tos)
		g.edges[from] = cp
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// DefaultGraph returns the process-wide container lifecycle graph.
func DefaultGraph() *Graph {
	g, err := NewGraph(defaultEdges)
	if err != nil {
		panic(fmt.Sprintf("default transition graph is invalid: %v", err))
	}
	return g
}

// Validate checks that the forward graph only references catalog statuses, never leaves a
// terminal status, never targets an exception status and has no cycles.
func (g *Graph) Validate() error {
	for from, tos := range g.edges {
		if !from.Valid() {
			return fmt.Errorf("%w: edge source %q", ErrUnknownStatus, from)
		}
		if from.IsException() {
			return fmt.Errorf("invalid transition graph: exception status %s cannot have configured edges", from)
		}
		if from.IsTerminal() && len(tos) > 0 {
			return fmt.Errorf("invalid transition graph: terminal status %s has outgoing edges", from)
		}
		for _, to := range tos {
			if !to.Valid() {
				return fmt.Errorf("%w: edge target %q", ErrUnknownStatus, to)
			}
			if to.IsException() {
				return fmt.Errorf("invalid transition graph: %s -> %s targets an exception status", from, to)
			}
			if to == from {
				return fmt.Errorf("invalid transition graph: self edge on %s", from)
			}
		}
	}
	return g.checkAcyclic()
}

// checkAcyclic runs Kahn's algorithm over the forward edges.
func (g *Graph) checkAcyclic() error {
	inDegree := make(map[Status]int)
	for from, tos := range g.edges {
		if _, ok := inDegree[from]; !ok {
			inDegree[from] = 0
		}
		for _, to := range tos {
			inDegree[to]++
		}
	}

	var queue []Status
	for s, d := range inDegree {
		if d == 0 {
			queue = append(queue, s)
		}
	}

	visited := 0
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		visited++
		for _, to := range g.edges[s] {
			inDegree[to]--
			if inDegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if visited != len(inDegree) {
		return fmt.Errorf("invalid transition graph: forward edges contain a cycle")
	}
	return nil
}

// Successors returns the one-edge forward successors of s, in canonical order.
func (g *Graph) Successors(s Status) []Status {
	out := make([]Status, len(g.edges[s]))
	copy(out, g.edges[s])
	SortStatuses(out)
	return out
}

// AllowedFrom returns the statuses that may directly follow s: its forward successors plus the
// exception set, minus s itself. Terminal statuses allow nothing.
func (g *Graph) AllowedFrom(s Status) []Status {
	if s.IsTerminal() {
		return []Status{}
	}

	allowed := g.Successors(s)
	for _, ex := range exceptionStatuses {
		if ex != s {
			allowed = append(allowed, ex)
		}
	}
	return allowed
}

// Allows reports whether target is in AllowedFrom(from).
func (g *Graph) Allows(from, target Status) bool {
	return ContainsStatus(g.AllowedFrom(from), target)
}

// Edges returns a copy of the forward edges, for display.
func (g *Graph) Edges() map[Status][]Status {
	out := make(map[Status][]Status, len(g.edges))
	for from := range g.edges {
		out[from] = g.Successors(from)
	}
	return out
}

// SortStatuses orders statuses by catalog position, lifecycle statuses before exceptions.
func SortStatuses(statuses []Status) {
	pos := func(s Status) int {
		if i := s.Index(); i >= 0 {
			return i
		}
		for i, ex := range exceptionStatuses {
			if ex == s {
				return len(canonicalOrder) + i
			}
		}
		return len(canonicalOrder) + len(exceptionStatuses)
	}
	sort.SliceStable(statuses, func(i, j int) bool {
		return pos(statuses[i]) < pos(statuses[j])
	})
}

// ContainsStatus reports whether s is in set.
func ContainsStatus(set []Status, s Status) bool {
	for _, candidate := range set {
		if candidate == s {
			return true
		}
	}
	return false
}
