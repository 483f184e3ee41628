package domain

import (
	"fmt"
	"strings"
)

// Status is a container lifecycle status from the closed catalog.
type Status string

const (
	StatusCreated                 Status = "CREATED"
	StatusBooked                  Status = "BOOKED"
	StatusEmptyReleased           Status = "EMPTY_RELEASED"
	StatusPickupScheduled         Status = "PICKUP_SCHEDULED"
	StatusCargoReceivedOrigin     Status = "CARGO_RECEIVED_ORIGIN"
	StatusStuffingInProgress      Status = "STUFFING_IN_PROGRESS"
	StatusStuffedSealed           Status = "STUFFED_SEALED"
	StatusGatedInOrigin           Status = "GATED_IN_ORIGIN"
	StatusCustomsExportInProgress Status = "CUSTOMS_EXPORT_IN_PROGRESS"
	StatusCustomsExportCleared    Status = "CUSTOMS_EXPORT_CLEARED"
	StatusLoadedOnVessel          Status = "LOADED_ON_VESSEL"
	StatusDepartedOrigin          Status = "DEPARTED_ORIGIN"
	StatusInTransit               Status = "IN_TRANSIT"
	StatusTransshipmentArrived    Status = "TRANSSHIPMENT_ARRIVED"
	StatusTransshipmentDeparted   Status = "TRANSSHIPMENT_DEPARTED"
	StatusArrivedDestinationPort  Status = "ARRIVED_DESTINATION_PORT"
	StatusDischarged              Status = "DISCHARGED"
	StatusAvailableForPickup      Status = "AVAILABLE_FOR_PICKUP"
	StatusCustomsImportInProgress Status = "CUSTOMS_IMPORT_IN_PROGRESS"
	StatusCustomsImportCleared    Status = "CUSTOMS_IMPORT_CLEARED"
	StatusReleasedFromTerminal    Status = "RELEASED_FROM_TERMINAL"
	StatusOutForDelivery          Status = "OUT_FOR_DELIVERY"
	StatusDelivered               Status = "DELIVERED"
	StatusEmptyReturned           Status = "EMPTY_RETURNED"
	StatusClosed                  Status = "CLOSED"

	// Exception statuses, reachable from any non-terminal status.
	StatusOnHold          Status = "ON_HOLD"
	StatusRolledOver      Status = "ROLLED_OVER"
	StatusDamagedReported Status = "DAMAGED_REPORTED"
	StatusCancelled       Status = "CANCELLED"
)

// Category groups statuses for shipment-level reporting.
type Category string

const (
	CategoryPreTransit Category = "PRE_TRANSIT"
	CategoryInTransit  Category = "IN_TRANSIT"
	CategoryCustoms    Category = "CUSTOMS"
	CategoryDelivery   Category = "DELIVERY"
	CategoryTerminal   Category = "TERMINAL"
	CategoryException  Category = "EXCEPTION"
)

// canonicalOrder is the forward lifecycle. Progress is measured as a position in this slice.
var canonicalOrder = []Status{
	StatusCreated,
	StatusBooked,
	StatusEmptyReleased,
	StatusPickupScheduled,
	StatusCargoReceivedOrigin,
	StatusStuffingInProgress,
	StatusStuffedSealed,
	StatusGatedInOrigin,
	StatusCustomsExportInProgress,
	StatusCustomsExportCleared,
	StatusLoadedOnVessel,
	StatusDepartedOrigin,
	StatusInTransit,
	StatusTransshipmentArrived,
	StatusTransshipmentDeparted,
	StatusArrivedDestinationPort,
	StatusDischarged,
	StatusAvailableForPickup,
	StatusCustomsImportInProgress,
	StatusCustomsImportCleared,
	StatusReleasedFromTerminal,
	StatusOutForDelivery,
	StatusDelivered,
	StatusEmptyReturned,
	StatusClosed,
}

// exceptionStatuses in the order they are reported to callers.
var exceptionStatuses = []Status{
	StatusOnHold,
	StatusRolledOver,
	StatusDamagedReported,
	StatusCancelled,
}

var (
	orderIndex = make(map[Status]int, len(canonicalOrder))
	categories = map[Status]Category{
		StatusCreated:                 CategoryPreTransit,
		StatusBooked:                  CategoryPreTransit,
		StatusEmptyReleased:           CategoryPreTransit,
		StatusPickupScheduled:         CategoryPreTransit,
		StatusCargoReceivedOrigin:     CategoryPreTransit,
		StatusStuffingInProgress:      CategoryPreTransit,
		StatusStuffedSealed:           CategoryPreTransit,
		StatusGatedInOrigin:           CategoryPreTransit,
		StatusCustomsExportInProgress: CategoryCustoms,
		StatusCustomsExportCleared:    CategoryCustoms,
		StatusLoadedOnVessel:          CategoryInTransit,
		StatusDepartedOrigin:          CategoryInTransit,
		StatusInTransit:               CategoryInTransit,
		StatusTransshipmentArrived:    CategoryInTransit,
		StatusTransshipmentDeparted:   CategoryInTransit,
		StatusArrivedDestinationPort:  CategoryInTransit,
		StatusDischarged:              CategoryInTransit,
		StatusAvailableForPickup:      CategoryDelivery,
		StatusCustomsImportInProgress: CategoryCustoms,
		StatusCustomsImportCleared:    CategoryCustoms,
		StatusReleasedFromTerminal:    CategoryDelivery,
		StatusOutForDelivery:          CategoryDelivery,
		StatusDelivered:               CategoryTerminal,
		StatusEmptyReturned:           CategoryDelivery,
		StatusClosed:                  CategoryTerminal,
		StatusOnHold:                  CategoryException,
		StatusRolledOver:              CategoryException,
		StatusDamagedReported:         CategoryException,
		StatusCancelled:               CategoryException,
	}
)

func init() {
	for i, s := range canonicalOrder {
		orderIndex[s] = i
	}
}

// ParseStatus converts a raw string into a catalog Status.
// Matching is case-insensitive and tolerates surrounding whitespace; anything else is rejected.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// Valid reports whether s belongs to the catalog.
func (s Status) Valid() bool {
	_, ok := categories[s]
	return ok
}

// String returns the wire representation.
func (s Status) String() string {
	return string(s)
}

// Category returns the reporting category of the status.
func (s Status) Category() Category {
	return categories[s]
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusClosed || s == StatusCancelled
}

// IsException reports whether the status is one of the out-of-band exception statuses.
func (s Status) IsException() bool {
	return s == StatusOnHold || s == StatusRolledOver || s == StatusDamagedReported || s == StatusCancelled
}

// Suspends reports whether the status pauses the lifecycle without erasing progress.
// The allowed set out of a suspending status is resolved from the status it interrupted.
func (s Status) Suspends() bool {
	return s == StatusOnHold || s == StatusRolledOver || s == StatusDamagedReported
}

// IsCustomerVisible is false for exceptions that stay internal until reviewed.
func (s Status) IsCustomerVisible() bool {
	return s != StatusDamagedReported
}

// Index returns the position in the canonical lifecycle, or -1 for exception statuses.
func (s Status) Index() int {
	if i, ok := orderIndex[s]; ok {
		return i
	}
	return -1
}

// MarshalText implements encoding.TextMarshaler. The zero value encodes as an empty string.
func (s Status) MarshalText() ([]byte, error) {
	if s != "" && !s.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, string(s))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects statuses outside the catalog.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CanonicalOrder returns a copy of the forward lifecycle.
func CanonicalOrder() []Status {
	out := make([]Status, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// ExceptionStatuses returns a copy of the exception set.
func ExceptionStatuses() []Status {
	out := make([]Status, len(exceptionStatuses))
	copy(out, exceptionStatuses)
	return out
}

// AllStatuses returns the full catalog: lifecycle first, then exceptions.
func AllStatuses() []Status {
	return append(CanonicalOrder(), exceptionStatuses...)
}
