package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shelf-dcs/internal/catalog"
)

var (
	catalogFile string
	masterFile  string
	perfFile    string
	jitterSeed  uint64
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the catalog from a snapshot JSON or from the master and performance CSVs",
	Example: `  shelf-dcs import --catalog catalog.json
  shelf-dcs import --master gondola_master.csv --performance shelf_performance.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var snap *catalog.Snapshot
		var err error
		switch {
		case catalogFile != "":
			snap, err = catalog.Load(catalogFile)
		case masterFile != "" && perfFile != "":
			opts := catalog.ImportOptions{DefaultPeriodDays: cfg.PeriodDays}
			if cmd.Flags().Changed("jitter-seed") {
				opts.Estimator = catalog.NewJitterEstimator(jitterSeed)
			}
			snap, err = catalog.ImportCSV(masterFile, perfFile, opts)
		default:
			return fmt.Errorf("either --catalog or both --master and --performance are required")
		}
		if err != nil {
			return err
		}
		if err := svc.Import(cmd.Context(), snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported store %s: %d fixtures, %d products (period %d days)\n",
			snap.StoreCode, len(snap.Fixtures), snap.ProductCount(), snap.PeriodDays)
		return nil
	},
}

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "List gondolas with their product counts and overflowing rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := svc.Snapshot()
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(snap.Fixtures))
		for _, id := range snap.FixtureIDs() {
			f := snap.Fixtures[id]
			var overflow []string
			for _, r := range f.Overflows() {
				overflow = append(overflow, strconv.Itoa(r.Row))
			}
			rows = append(rows, []string{
				id, f.CategoryLabel, strconv.Itoa(f.Rows), strconv.Itoa(f.ShelfWidth()),
				strconv.Itoa(len(f.Products)), strconv.Itoa(len(f.Removed)), strings.Join(overflow, ","),
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Store %s %s\n", snap.StoreCode, snap.StoreName)
		renderTable(cmd.OutOrStdout(), []string{"Fixture", "Label", "Rows", "Width", "Products", "Removed", "Overflow rows"}, rows)
		return nil
	},
}

var occupancyCmd = &cobra.Command{
	Use:   "occupancy FIXTURE",
	Short: "Show occupied and free width per shelf level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		occ, err := svc.RowOccupancy(args[0])
		if err != nil {
			return err
		}
		renderOccupancy(cmd.OutOrStdout(), occ)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog snapshot JSON")
	importCmd.Flags().StringVar(&masterFile, "master", "", "gondola master CSV")
	importCmd.Flags().StringVar(&perfFile, "performance", "", "shelf performance CSV")
	importCmd.Flags().Uint64Var(&jitterSeed, "jitter-seed", 0, "seed for jittered weekly sales history (default: even split)")
	importCmd.MarkFlagsMutuallyExclusive("catalog", "master")
	importCmd.MarkFlagsRequiredTogether("master", "performance")

	rootCmd.AddCommand(importCmd, fixturesCmd, occupancyCmd)
}
