package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/internal/daemon"
	"github.com/rosterhq/roster/internal/domain"
)

func init() {
	backlogAddCmd.Flags().IntVar(&backlogPriority, "priority", 0, "Priority override (defaults to the task's own priority)")
	backlogDrainCmd.Flags().IntVar(&backlogMax, "max", 10, "Maximum number of tasks to auto-assign")
	rootCmd.AddCommand(backlogAddCmd)
	rootCmd.AddCommand(backlogDrainCmd)
}

var backlogPriority int

var backlogAddCmd = &cobra.Command{
	Use:   "backlog-add TASK_ID",
	Short: "Queue an unassigned task on the intake backlog",
	Args:  cobra.ExactArgs(1),
	RunE:  runBacklogAdd,
}

func runBacklogAdd(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	priority := backlogPriority
	if priority == 0 {
		task, err := d.DB.GetTask(cmd.Context(), taskID)
		if err != nil {
			return err
		}
		priority = task.Priority
	}

	if err := d.Scheduler.Enqueue(taskID, priority); err != nil {
		return err
	}

	fmt.Printf("Queued task %s at priority %d (queue depth %d)\n", taskID, priority, d.Scheduler.QueueDepth())
	return nil
}

var backlogMax int

var backlogDrainCmd = &cobra.Command{
	Use:   "backlog-drain",
	Short: "Auto-assign queued tasks in priority order, most urgent first",
	RunE:  runBacklogDrain,
}

func runBacklogDrain(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	assigned := 0
	for assigned < backlogMax {
		qt := d.Scheduler.Dequeue()
		if qt == nil {
			break
		}

		a, err := d.Engine.AssignTask(cmd.Context(), qt.TaskID, domain.AssignAuto, "")
		if err != nil {
			fmt.Printf("skip %s: %v\n", qt.TaskID, err)
			continue
		}
		fmt.Printf("assigned %s -> %s\n", a.TaskID, a.AssigneeID)
		assigned++
	}

	stats := d.Scheduler.Stats()
	fmt.Printf("assigned %d task(s), %d remaining in queue (back-pressure: %s)\n",
		assigned, stats.QueueDepth, stats.BackPressure)
	return nil
}
