package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelf-dcs/internal/catalog"
	"shelf-dcs/internal/dcs"
	"shelf-dcs/internal/ledger"
	"shelf-dcs/internal/planner"
)

var (
	candidatesFile string
	filter         ledger.Filter
	actionFilter   string
	proposalFix    string
	rejectReason   string
	assumeYes      bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Run the DCS engine and store a new proposal batch (clears earlier decisions)",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := candidatesFile
		if path == "" {
			path = cfg.CandidatesFile
		}
		var candidates []dcs.Candidate
		if path != "" {
			var err error
			if candidates, err = catalog.LoadCandidates(path); err != nil {
				return err
			}
		}

		ev, err := svc.Evaluate(cmd.Context(), cfg.Ruleset, candidates)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Ruleset %s over %d products: %d cut, %d face reduce, %d face increase\n",
			ev.Ruleset, ev.Summary.CatalogSize, ev.Summary.Cut, ev.Summary.FaceReduce, ev.Summary.FaceIncrease)
		if ev.Summary.ReductionRatio != nil {
			fmt.Fprintf(out, "Reduction ratio %.1f%%\n", *ev.Summary.ReductionRatio*100)
		}
		renderProposals(out, ev.Proposals.Sorted())
		return nil
	},
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List proposals without a decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter.Action = dcs.Action(actionFilter)
		view, err := svc.Pending(filter)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d of %d pending (%d approved, %d rejected)\n",
			view.Summary.Pending, view.Summary.Total, view.Summary.Approved, view.Summary.Rejected)
		renderProposals(out, view.Proposals)
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve JAN",
	Short: "Approve a proposal and apply it to the shelf",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := svc.Approve(cmd.Context(), proposalFix, args[0], cfg.Actor, overflowConfirmer(cmd, assumeYes))
		if err != nil {
			return err
		}
		printDecision(cmd, d)
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject JAN",
	Short: "Reject a proposal, leaving the shelf unchanged",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := svc.Reject(cmd.Context(), proposalFix, args[0], cfg.Actor, rejectReason)
		if err != nil {
			return err
		}
		printDecision(cmd, d)
		return nil
	},
}

func printDecision(cmd *cobra.Command, d planner.Decision) {
	out := cmd.OutOrStdout()
	p := d.Proposal
	if d.Entry == nil {
		msg := "not applied"
		if d.Facing != nil && d.Facing.Warning != nil {
			msg = d.Facing.Warning.String()
		}
		fmt.Fprintf(out, "%s %s %s: %s\n", p.FixtureID, p.JAN, p.Action, warnStyle.Render(msg))
		return
	}
	fmt.Fprintf(out, "%s %s %s: %s by %s\n", p.FixtureID, p.JAN, p.Action, okStyle.Render(string(d.Entry.Decision)), d.Entry.Actor)
}

func init() {
	evaluateCmd.Flags().StringVar(&candidatesFile, "candidates", "", "replacement-candidate CSV (overrides DCS_CANDIDATES_FILE)")

	pendingCmd.Flags().StringVar(&actionFilter, "action", "", "only this action: cut, faceReduce or faceIncrease")
	pendingCmd.Flags().StringVar(&filter.Category, "category", "", "only this category")
	pendingCmd.Flags().Float64Var(&filter.MinPI, "min-pi", 0, "minimum daily sales rate")

	for _, c := range []*cobra.Command{approveCmd, rejectCmd} {
		c.Flags().StringVar(&proposalFix, "fixture", "", "fixture id, when the JAN has proposals on several fixtures")
	}
	approveCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "apply facing increases even if the row overflows")
	rejectCmd.Flags().StringVar(&rejectReason, "reason", "", "why the proposal was rejected")

	rootCmd.AddCommand(evaluateCmd, pendingCmd, approveCmd, rejectCmd)
}
