package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/internal/daemon"
)

func init() {
	recommendCmd.Flags().IntVar(&recommendK, "k", 3, "Number of candidates to show")
	rootCmd.AddCommand(recommendCmd)
}

var recommendK int

var recommendCmd = &cobra.Command{
	Use:   "recommend TASK_ID",
	Short: "Show the similarity filter's top candidates with their bandit scores, without assigning",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	recs, err := d.Engine.Recommend(cmd.Context(), taskID, recommendK)
	if err != nil {
		return err
	}

	if len(recs) == 0 {
		fmt.Println("No candidates found for this task.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMPLOYEE\tSCORE")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%.4f\n", r.EmployeeID, r.Score)
	}
	return w.Flush()
}
