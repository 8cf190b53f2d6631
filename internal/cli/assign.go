package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/internal/daemon"
	"github.com/rosterhq/roster/internal/domain"
)

func init() {
	assignCmd.Flags().StringVar(&assignEmployeeID, "employee", "", "Employee ID for manual assignment")
	rootCmd.AddCommand(assignCmd)
}

var assignEmployeeID string

var assignCmd = &cobra.Command{
	Use:   "assign TASK_ID",
	Short: "Assign a task, auto-selected by the bandit unless --employee is given",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssign,
}

func runAssign(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	mode := domain.AssignAuto
	if assignEmployeeID != "" {
		mode = domain.AssignManual
	}

	assignment, err := d.Engine.AssignTask(cmd.Context(), taskID, mode, assignEmployeeID)
	if err != nil {
		return err
	}

	fmt.Printf("Assigned task %s to employee %s (mode=%s)\n", assignment.TaskID, assignment.AssigneeID, mode)
	return nil
}
