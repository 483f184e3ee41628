// Package cli implements trackctl, an offline inspector for the status catalog and
// transition graph.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cargo-tracker/internal/features/tracking/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RootCmd returns the trackctl root command.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trackctl",
		Short: "Inspect the container status catalog and transition graph",
		Long: `trackctl prints the status catalog, the statuses reachable from a given status,
and the full forward transition graph. It reads the built-in graph and needs no server.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if off, _ := cmd.Flags().GetBool("no-color"); off {
			color.NoColor = true
		}
	}

	root.AddCommand(StatusesCmd())
	root.AddCommand(NextCmd())
	root.AddCommand(GraphCmd())
	return root
}

// StatusesCmd returns the statuses command.
func StatusesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "statuses",
		Short: "List every status with its category",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := domain.Catalog(domain.DefaultGraph())
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}

			for _, info := range catalog {
				order := fmt.Sprintf("%2d", info.Order)
				if info.Order < 0 {
					order = " -"
				}
				fmt.Fprintf(out, "%s  %-28s %-12s%s\n", order, paint(info.Status), info.Category, flags(info))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}

// NextCmd returns the next command.
func NextCmd() *cobra.Command {
	var anchor string

	cmd := &cobra.Command{
		Use:   "next <status>",
		Short: "Show the statuses allowed after a status",
		Long: `Show the allowed next statuses for a container whose current status is <status>.
ON_HOLD, ROLLED_OVER and DAMAGED_REPORTED resume from the last regular status, so pass it with --anchor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := domain.ParseStatus(args[0])
			if err != nil {
				return err
			}
			allowed, err := allowedAfter(domain.DefaultGraph(), current, anchor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(allowed) == 0 {
				fmt.Fprintf(out, "%s is terminal: no further statuses\n", paint(current))
				return nil
			}
			fmt.Fprintf(out, "From %s:\n", paint(current))
			for _, s := range allowed {
				fmt.Fprintf(out, "  -> %s\n", paint(s))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&anchor, "anchor", "", "last regular status before a suspending exception")
	return cmd
}

// allowedAfter mirrors the ledger's rule: suspending exceptions resume from their anchor.
func allowedAfter(g *domain.Graph, current domain.Status, rawAnchor string) ([]domain.Status, error) {
	if !current.Suspends() {
		return g.AllowedFrom(current), nil
	}
	if rawAnchor == "" {
		return nil, fmt.Errorf("%s resumes from the last regular status: pass --anchor", current)
	}
	anchor, err := domain.ParseStatus(rawAnchor)
	if err != nil {
		return nil, err
	}
	if anchor.IsException() {
		return nil, fmt.Errorf("anchor %s must be a regular status", anchor)
	}

	var allowed []domain.Status
	for _, s := range g.AllowedFrom(anchor) {
		if s != current {
			allowed = append(allowed, s)
		}
	}
	return allowed, nil
}

// GraphCmd returns the graph command.
func GraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print the forward transition graph",
		Long: `Print every regular status with its forward successors. Every non-terminal status
may also move to ON_HOLD, ROLLED_OVER, DAMAGED_REPORTED and CANCELLED.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := domain.DefaultGraph()
			if err := g.Validate(); err != nil {
				return err
			}
			printGraph(cmd.OutOrStdout(), g)
			return nil
		},
	}
}

func printGraph(out io.Writer, g *domain.Graph) {
	for _, s := range domain.CanonicalOrder() {
		next := g.Successors(s)
		if len(next) == 0 {
			fmt.Fprintf(out, "%s %s\n", paint(s), color.New(color.Faint).Sprint("(end)"))
			continue
		}
		names := make([]string, len(next))
		for i, n := range next {
			names[i] = paint(n)
		}
		fmt.Fprintf(out, "%s -> %s\n", paint(s), strings.Join(names, ", "))
	}

	exceptions := make([]string, 0, len(domain.ExceptionStatuses()))
	for _, s := range domain.ExceptionStatuses() {
		exceptions = append(exceptions, paint(s))
	}
	fmt.Fprintf(out, "\nfrom any non-terminal status: %s\n", strings.Join(exceptions, ", "))
}

func paint(s domain.Status) string {
	switch {
	case s.IsTerminal() && s.IsException():
		return color.New(color.FgRed).Sprint(s)
	case s.IsTerminal():
		return color.New(color.FgGreen, color.Bold).Sprint(s)
	case s.IsException():
		return color.New(color.FgYellow).Sprint(s)
	}
	switch s.Category() {
	case domain.CategoryCustoms:
		return color.New(color.FgMagenta).Sprint(s)
	case domain.CategoryInTransit:
		return color.New(color.FgCyan).Sprint(s)
	default:
		return color.New(color.FgBlue).Sprint(s)
	}
}

func flags(info domain.StatusInfo) string {
	var parts []string
	if info.Terminal {
		parts = append(parts, "terminal")
	}
	if info.Exception {
		parts = append(parts, "exception")
	}
	if !info.CustomerVisible {
		parts = append(parts, "internal")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}
