package domain

import (
	"sort"
	"strings"
	"time"

	trackingdomain "cargo-tracker/internal/features/tracking/domain"
)

// Milestone is one equipment or transport event reported by a carrier.
type Milestone struct {
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	EventTime   time.Time `json:"eventTime"`
}

// MilestoneFeed is everything a carrier reports for one container number.
type MilestoneFeed struct {
	ContainerNumber string      `json:"containerNumber"`
	Carrier         string      `json:"carrier,omitempty"`
	Milestones      []Milestone `json:"milestones"`
}

// MappedMilestone is a carrier milestone translated onto the status catalog.
type MappedMilestone struct {
	Milestone
	Status trackingdomain.Status `json:"status"`
}

// codeStatus maps carrier event codes onto tracking statuses.
var codeStatus = map[string]trackingdomain.Status{
	"BKCF": trackingdomain.StatusBooked,
	"EMRL": trackingdomain.StatusEmptyReleased,
	"STUF": trackingdomain.StatusStuffedSealed,
	"GTIN": trackingdomain.StatusGatedInOrigin,
	"LOAD": trackingdomain.StatusLoadedOnVessel,
	"DEPA": trackingdomain.StatusDepartedOrigin,
	"TSAR": trackingdomain.StatusTransshipmentArrived,
	"TSDP": trackingdomain.StatusTransshipmentDeparted,
	"ARRI": trackingdomain.StatusArrivedDestinationPort,
	"DISC": trackingdomain.StatusDischarged,
	"AVPU": trackingdomain.StatusAvailableForPickup,
	"CUSR": trackingdomain.StatusCustomsImportCleared,
	"GTOT": trackingdomain.StatusReleasedFromTerminal,
	"DLVD": trackingdomain.StatusDelivered,
	"EMRT": trackingdomain.StatusEmptyReturned,
	"ROLL": trackingdomain.StatusRolledOver,
	"HOLD": trackingdomain.StatusOnHold,
}

// StatusForCode returns the status a carrier code maps to.
func StatusForCode(code string) (trackingdomain.Status, bool) {
	s, ok := codeStatus[strings.ToUpper(strings.TrimSpace(code))]
	return s, ok
}

// Map translates the feed's milestones, ordered by event time. Milestones with codes outside
// the map are returned separately.
func (f MilestoneFeed) Map() (mapped []MappedMilestone, unknown []Milestone) {
	for _, m := range f.Milestones {
		status, ok := StatusForCode(m.Code)
		if !ok {
			unknown = append(unknown, m)
			continue
		}
		mapped = append(mapped, MappedMilestone{Milestone: m, Status: status})
	}
	sort.SliceStable(mapped, func(i, j int) bool {
		return mapped[i].EventTime.Before(mapped[j].EventTime)
	})
	return mapped, unknown
}
