package domain

// StatusInfo describes one catalog entry for display and client-side lookup tables.
type StatusInfo struct {
	Status          Status   `json:"status"`
	Category        Category `json:"category"`
	Order           int      `json:"order"`
	Terminal        bool     `json:"terminal"`
	Exception       bool     `json:"exception"`
	CustomerVisible bool     `json:"customerVisible"`
	Successors      []Status `json:"successors"`
}

// Catalog lists every status with its forward successors in g. Exception statuses have an Order
// of -1 and no configured successors; their allowed set depends on the ledger.
func Catalog(g *Graph) []StatusInfo {
	all := AllStatuses()
	out := make([]StatusInfo, 0, len(all))
	for _, s := range all {
		out = append(out, StatusInfo{
			Status:          s,
			Category:        s.Category(),
			Order:           s.Index(),
			Terminal:        s.IsTerminal(),
			Exception:       s.IsException(),
			CustomerVisible: s.IsCustomerVisible(),
			Successors:      g.Successors(s),
		})
	}
	return out
}
