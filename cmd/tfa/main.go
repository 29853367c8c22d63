// Package main provides the tfa command line: build a thermodynamic model
// from a problem description and inspect or export it.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/tfa/config"
	"github.com/katalvlaran/tfa/network"
	"github.com/katalvlaran/tfa/thermo"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tfa",
		Short: "Thermodynamic flux analysis with correlated formation-energy errors",
		Long: `tfa augments a stoichiometric network with thermodynamic variables and
constraints. Formation-energy errors are bounded by boxes, pairwise bounds
for loosely correlated species and an ellipsoid for the tightly correlated
cluster.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "YAML model configuration (defaults when empty)")
	rootCmd.PersistentFlags().String("problem", "", "YAML problem description")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log model construction to stderr")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tfa v%s\n", version)
		},
	})

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the flattened linear problem as JSON",
		RunE:  runExport,
	}
	exportCmd.Flags().StringP("output", "o", "", "Output file (stdout when empty)")
	rootCmd.AddCommand(exportCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "clusters",
		Short: "Print the correlation clusters of the formation-energy errors",
		RunE:  runClusters,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "bounds",
		Short: "Print the ΔG interval of every reaction implied by the box bounds",
		RunE:  runBounds,
	})

	return rootCmd
}

// loadModel builds the model named by the persistent flags.
func loadModel(cmd *cobra.Command) (*thermo.Model, *network.Network, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	probPath, _ := cmd.Flags().GetString("problem")
	verbose, _ := cmd.Flags().GetBool("verbose")

	if probPath == "" {
		return nil, nil, errors.New("--problem is required")
	}
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		if cfg, err = config.Load(cfgPath); err != nil {
			return nil, nil, err
		}
	}
	prob, err := config.LoadProblem(probPath)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = io.Discard
	if verbose {
		w = cmd.ErrOrStderr()
	}

	return prob.Build(cfg, slog.New(slog.NewTextHandler(w, nil)))
}

// exportDoc is the JSON document written by export.
type exportDoc struct {
	*thermo.Export
	LHS [][]float64 `json:"lhs"`
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")
	m, _, err := loadModel(cmd)
	if err != nil {
		return err
	}
	ex, err := m.ExportMIP()
	if err != nil {
		return err
	}

	doc := exportDoc{Export: ex, LHS: make([][]float64, ex.LHS.Rows())}
	for i := range doc.LHS {
		doc.LHS[i] = ex.LHS.Row(i)
	}

	w := cmd.OutOrStdout()
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

func runClusters(cmd *cobra.Command, args []string) error {
	m, _, err := loadModel(cmd)
	if err != nil {
		return err
	}
	cl, err := m.Clusters()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "problematic:  %s\n", strings.Join(cl.Problematic, " "))
	fmt.Fprintf(w, "low variance: %s\n", strings.Join(cl.LowVariance, " "))
	fmt.Fprintf(w, "independent:  %s\n", strings.Join(cl.Independent, " "))
	printGroup(w, "tight", cl.TightIDs(), cl.Tight)
	printGroup(w, "loose", cl.LooseIDs(), cl.Loose)

	return nil
}

func printGroup(w io.Writer, label string, ids []string, partners map[string][]string) {
	fmt.Fprintf(w, "%s:\n", label)
	for _, id := range ids {
		ps := append([]string(nil), partners[id]...)
		sort.Strings(ps)
		fmt.Fprintf(w, "  %s -> %s\n", id, strings.Join(ps, " "))
	}
}

func runBounds(cmd *cobra.Command, args []string) error {
	m, net, err := loadModel(cmd)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, r := range net.Reactions() {
		lo, hi, err := m.EnergyRange(r.ID)
		switch {
		case errors.Is(err, thermo.ErrExcludedReaction):
			fmt.Fprintf(w, "%s\texcluded\n", r.ID)
		case err != nil:
			return err
		default:
			fmt.Fprintf(w, "%s\t[%.2f, %.2f]\n", r.ID, lo, hi)
		}
	}

	return nil
}
