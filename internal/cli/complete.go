package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/internal/daemon"
)

func init() {
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(reworkCmd)
}

var completeCmd = &cobra.Command{
	Use:   "complete TASK_ID",
	Short: "Complete a task and feed the outcome back into the bandit",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func runComplete(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	feedback, err := d.Engine.CompleteTask(cmd.Context(), taskID)
	if err != nil {
		return err
	}

	fmt.Printf("Completed task %s\n", feedback.TaskID)
	fmt.Printf("  reward:        %.3f (raw %.3f)\n", feedback.RewardValue, feedback.RawReward)
	fmt.Printf("  r_completion:  %.3f\n", feedback.RCompletion)
	fmt.Printf("  r_ontime:      %.3f\n", feedback.ROntime)
	fmt.Printf("  r_good_behav:  %.3f\n", feedback.RGoodBehaviour)
	fmt.Printf("  p_overdue:     %.3f (%d day(s) overdue)\n", feedback.POverdue, feedback.OverdueDays)
	fmt.Printf("  p_rework:      %.3f\n", feedback.PRework)
	fmt.Printf("  p_failure:     %.3f\n", feedback.PFailure)
	return nil
}

var reworkCmd = &cobra.Command{
	Use:   "mark-rework TASK_ID",
	Short: "Flag a task's open assignment as requiring rework before completion",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarkRework,
}

func runMarkRework(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Engine.MarkRework(cmd.Context(), taskID); err != nil {
		return err
	}

	fmt.Printf("Marked rework on task %s\n", taskID)
	return nil
}
