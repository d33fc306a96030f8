// Package main provides the hetiograph CLI: bulk loading of node and edge
// files into the graph store, the neighborhood and repurposing queries, and
// the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/hetiograph/internal/app"
	"github.com/yungbote/hetiograph/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "hetiograph",
	Short:         "Load a biomedical knowledge graph and query it",
	Long:          `hetiograph loads Hetionet-style node and edge TSV files into Neo4j (plus an optional attribute mirror) and answers neighborhood and drug-repurposing queries.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loadCmd = &cobra.Command{
	Use:   "load <nodes.tsv> <edges.tsv>",
	Short: "Load node and edge files (local paths or gs:// URLs, optionally .gz)",
	Args:  cobra.ExactArgs(2),
	RunE:  runLoad,
}

var neighborhoodCmd = &cobra.Command{
	Use:   "neighborhood <entity-id>",
	Short: "Show the drugs, genes and locations related to an entity",
	Args:  cobra.ExactArgs(1),
	RunE:  runNeighborhood,
}

var repurposeCmd = &cobra.Command{
	Use:   "repurpose <disease-id>",
	Short: "Rank compounds that reverse a disease's gene regulation",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepurpose,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), app.Version)
	},
}

var (
	configPath string
	jsonFlag   bool
	limitFlag  int
	addrFlag   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("HETIOGRAPH_CONFIG"), "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output as JSON")
	repurposeCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of candidates (0 = all)")
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (overrides http.addr)")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(neighborhoodCmd)
	rootCmd.AddCommand(repurposeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// open loads the config and wires an App. The caller closes it.
func open(ctx context.Context, withMirror bool) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if addrFlag != "" {
		cfg.HTTP.Addr = addrFlag
	}
	return app.New(ctx, cfg, withMirror)
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()
	a, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.Loader.LoadFiles(ctx, args[0], args[1])
	if report != nil {
		if perr := printReport(cmd.OutOrStdout(), report, jsonFlag); perr != nil {
			return perr
		}
	}
	return err
}

func runNeighborhood(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()
	a, err := open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Queries.Neighborhood(ctx, args[0])
	if err != nil {
		return err
	}
	return printNeighborhood(cmd.OutOrStdout(), res, jsonFlag)
}

func runRepurpose(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()
	a, err := open(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Queries.RepurposingCandidates(ctx, args[0], limitFlag)
	if err != nil {
		return err
	}
	return printCandidates(cmd.OutOrStdout(), args[0], out, jsonFlag)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()
	a, err := open(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Serve(ctx)
}
