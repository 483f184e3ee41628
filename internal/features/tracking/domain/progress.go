package domain

import "math"

// ContainerProgressView is one container's line in a shipment progress report.
type ContainerProgressView struct {
	ContainerID     string   `json:"containerId"`
	ContainerNumber string   `json:"containerNumber"`
	Status          Status   `json:"status"`
	Category        Category `json:"category"`
	ProgressPercent float64  `json:"progressPercent"`
}

// ShipmentProgress is the derived shipment-level state. It is computed on every read and never
// persisted.
type ShipmentProgress struct {
	Status          Status                  `json:"status"`
	Category        Category                `json:"category"`
	ProgressPercent float64                 `json:"progressPercent"`
	Containers      []ContainerProgressView `json:"containers"`
}

// StatusProgress is the lifecycle progress of a non-exception status, in percent.
func StatusProgress(s Status) float64 {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	pct := float64(idx) / float64(StatusDelivered.Index()) * 100
	return math.Min(100, math.Max(0, pct))
}

// ContainerProgress applies the exception policy: ON_HOLD and ROLLED_OVER keep the progress of
// the status they interrupted, CANCELLED and DAMAGED_REPORTED count as zero.
func ContainerProgress(l *Ledger) float64 {
	switch current := l.CurrentStatus(); current {
	case StatusCancelled, StatusDamagedReported:
		return 0
	case StatusOnHold, StatusRolledOver:
		return round2(StatusProgress(l.Anchor()))
	default:
		return round2(StatusProgress(current))
	}
}

// isDeliveredOrBeyond is true for DELIVERED and the post-delivery lifecycle.
func isDeliveredOrBeyond(s Status) bool {
	return s.Index() >= StatusDelivered.Index()
}

// DeriveShipmentStatus aggregates container ledgers into a shipment status and progress.
//
//   - DELIVERED when every container is delivered (or past delivery). A cancelled container is
//     never delivered.
//   - CANCELLED when a container is cancelled and no other container got further than it.
//   - Otherwise the least advanced container's status, cancelled containers included; a shipment
//     is only as done as its slowest container. On equal advancement an exception status wins so
//     holds surface.
func DeriveShipmentStatus(containers []*Container) ShipmentProgress {
	out := ShipmentProgress{
		Status:     StatusCreated,
		Category:   StatusCreated.Category(),
		Containers: make([]ContainerProgressView, 0, len(containers)),
	}
	if len(containers) == 0 {
		return out
	}

	var (
		total         float64
		cancelledRank = -1
		liveRank      = -1
		slowest       *Container
		slowestRank   int
		allDelivered  = true
	)

	for _, c := range containers {
		current := c.CurrentStatus()
		pct := c.Progress()
		total += pct
		out.Containers = append(out.Containers, ContainerProgressView{
			ContainerID:     c.ID,
			ContainerNumber: c.ContainerNumber,
			Status:          current,
			Category:        current.Category(),
			ProgressPercent: pct,
		})

		rank := c.Ledger().Anchor().Index()
		if current == StatusCancelled {
			if rank > cancelledRank {
				cancelledRank = rank
			}
		} else if rank > liveRank {
			liveRank = rank
		}
		if current == StatusCancelled || !isDeliveredOrBeyond(current) {
			allDelivered = false
		}
		if slowest == nil || rank < slowestRank ||
			(rank == slowestRank && current.IsException() && !slowest.CurrentStatus().IsException()) {
			slowest = c
			slowestRank = rank
		}
	}

	out.ProgressPercent = round2(total / float64(len(containers)))

	switch {
	case cancelledRank >= 0 && liveRank <= cancelledRank:
		out.Status = StatusCancelled
	case allDelivered:
		out.Status = StatusDelivered
	default:
		out.Status = slowest.CurrentStatus()
	}
	out.Category = out.Status.Category()
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
