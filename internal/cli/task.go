package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/internal/daemon"
	"github.com/rosterhq/roster/internal/domain"
)

func init() {
	taskAddCmd.Flags().StringVar(&taskSkills, "skills", "", "Comma-separated required skill names")
	taskAddCmd.Flags().IntVar(&taskPriority, "priority", 3, "Priority 1-5, higher is more urgent")
	taskAddCmd.Flags().IntVar(&taskDifficulty, "difficulty", 5, "Difficulty 1-10")
	taskAddCmd.Flags().StringVar(&taskDueIn, "due-in", "", "Duration until due, e.g. 72h (empty = no due date)")
	rootCmd.AddCommand(taskAddCmd)
	rootCmd.AddCommand(taskShowCmd)
}

var (
	taskSkills     string
	taskPriority   int
	taskDifficulty int
	taskDueIn      string
)

var taskAddCmd = &cobra.Command{
	Use:   "task-add TITLE",
	Short: "Create a new task awaiting assignment",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAdd,
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	title := args[0]

	var skills []string
	for _, s := range strings.Split(taskSkills, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			skills = append(skills, s)
		}
	}

	var dueDate *time.Time
	if taskDueIn != "" {
		d, err := time.ParseDuration(taskDueIn)
		if err != nil {
			return fmt.Errorf("parse --due-in: %w", err)
		}
		due := time.Now().Add(d)
		dueDate = &due
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	task := domain.Task{
		ID:             uuid.New().String(),
		Title:          title,
		Priority:       taskPriority,
		Difficulty:     taskDifficulty,
		RequiredSkills: skills,
		Status:         domain.TaskTodo,
		DueDate:        dueDate,
	}

	if err := d.DB.InsertTask(cmd.Context(), task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	fmt.Printf("Created task %s (%s)\n", task.Title, task.ID)
	return nil
}

var taskShowCmd = &cobra.Command{
	Use:   "task-show TASK_ID",
	Short: "Show a task's current state",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	task, err := d.DB.GetTask(cmd.Context(), taskID)
	if err != nil {
		return err
	}

	fmt.Printf("ID:         %s\n", task.ID)
	fmt.Printf("Title:      %s\n", task.Title)
	fmt.Printf("Status:     %s\n", task.Status)
	fmt.Printf("Assignee:   %s\n", task.AssigneeID)
	fmt.Printf("Priority:   %d\n", task.Priority)
	fmt.Printf("Difficulty: %d\n", task.Difficulty)
	fmt.Printf("Skills:     %s\n", strings.Join(task.RequiredSkills, ","))
	if task.DueDate != nil {
		fmt.Printf("Due:        %s\n", task.DueDate.Format("2006-01-02 15:04:05"))
	}
	return nil
}
