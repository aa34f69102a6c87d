package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var editLimit int

func intArg(args []string, i int, name string) (int, error) {
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, args[i])
	}
	return n, nil
}

var facingCmd = &cobra.Command{
	Use:   "facing FIXTURE JAN FACE",
	Short: "Set a product's facing count (0 removes it)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		face, err := intArg(args, 2, "FACE")
		if err != nil {
			return err
		}
		res, err := svc.ChangeFacing(cmd.Context(), args[0], args[1], face, overflowConfirmer(cmd, assumeYes), cfg.Actor)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch {
		case !res.Applied:
			fmt.Fprintf(out, "%s: %s\n", warnStyle.Render("not applied"), res.Warning)
		case res.Deleted:
			fmt.Fprintf(out, "%s removed from %s\n", args[1], args[0])
		default:
			fmt.Fprintf(out, "%s facing set to %d (cap %d)\n", args[1], res.Product.Face, res.Product.Cap)
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete FIXTURE JAN",
	Short: "Remove a product from the shelf (restorable)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := svc.DeleteProduct(cmd.Context(), args[0], args[1], cfg.Actor); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s removed from %s\n", args[1], args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore FIXTURE JAN",
	Short: "Put a removed product back on the shelf",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := svc.RestoreProduct(cmd.Context(), args[0], args[1], cfg.Actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s restored to row %d with %d facings\n", p.JAN, p.Row, p.Face)
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move FIXTURE JAN ROW INDEX",
	Short: "Move a product before the product at INDEX of ROW (past the end appends)",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := intArg(args, 2, "ROW")
		if err != nil {
			return err
		}
		index, err := intArg(args, 3, "INDEX")
		if err != nil {
			return err
		}
		p, err := svc.MoveProduct(cmd.Context(), args[0], args[1], row, index, cfg.Actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s moved to row %d (cap %d)\n", p.JAN, p.Row, p.Cap)
		return nil
	},
}

var depthCmd = &cobra.Command{
	Use:   "depth FIXTURE JAN DEPTH",
	Short: "Set how many units stand front-to-back",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, err := intArg(args, 2, "DEPTH")
		if err != nil {
			return err
		}
		p, err := svc.ChangeDepth(cmd.Context(), args[0], args[1], depth, cfg.Actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s depth %d (cap %d)\n", p.JAN, p.Depth, p.Cap)
		return nil
	},
}

var rowHeightCmd = &cobra.Command{
	Use:   "row-height FIXTURE ROW HEIGHT_MM",
	Short: "Change the clear height of a shelf level",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		row, err := intArg(args, 1, "ROW")
		if err != nil {
			return err
		}
		height, err := intArg(args, 2, "HEIGHT_MM")
		if err != nil {
			return err
		}
		if err := svc.SetRowHeight(cmd.Context(), args[0], row, height, cfg.Actor); err != nil {
			return err
		}
		occ, err := svc.RowOccupancy(args[0])
		if err != nil {
			return err
		}
		renderOccupancy(cmd.OutOrStdout(), occ)
		return nil
	},
}

var stockCmd = &cobra.Command{
	Use:   "stock FIXTURE JAN DELTA",
	Short: "Add a manual correction to the displayed stock",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := intArg(args, 2, "DELTA")
		if err != nil {
			return err
		}
		p, err := svc.CorrectStock(cmd.Context(), args[0], args[1], delta, cfg.Actor)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s stock %d (correction %+d)\n", p.JAN, p.EffectiveStock(), p.StockCorrection)
		return nil
	},
}

var editsCmd = &cobra.Command{
	Use:   "edits FIXTURE",
	Short: "Show the shelf edit log, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edits, err := svc.Edits(cmd.Context(), args[0], editLimit)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(edits))
		for _, e := range edits {
			rows = append(rows, []string{e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Actor, e.Action, string(e.Details)})
		}
		renderTable(cmd.OutOrStdout(), []string{"When", "Actor", "Action", "Details"}, rows)
		return nil
	},
}

func init() {
	facingCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "apply even if the row overflows")
	editsCmd.Flags().IntVar(&editLimit, "limit", 20, "maximum number of entries")

	rootCmd.AddCommand(facingCmd, deleteCmd, restoreCmd, moveCmd, depthCmd, rowHeightCmd, stockCmd, editsCmd)
}
