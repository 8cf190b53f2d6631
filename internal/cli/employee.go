package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/internal/daemon"
	"github.com/rosterhq/roster/internal/domain"
)

func init() {
	employeeAddCmd.Flags().StringVar(&employeeSkills, "skills", "", "Comma-separated skill names")
	employeeAddCmd.Flags().Float64Var(&employeeProductivity, "productivity", 0.5, "Productivity score [0,1]")
	rootCmd.AddCommand(employeeAddCmd)
	rootCmd.AddCommand(employeeListCmd)
}

var (
	employeeSkills       string
	employeeProductivity float64
)

var employeeAddCmd = &cobra.Command{
	Use:   "employee-add NAME",
	Short: "Register a new employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeeAdd,
}

func runEmployeeAdd(cmd *cobra.Command, args []string) error {
	name := args[0]

	var skills []domain.Skill
	for _, s := range strings.Split(employeeSkills, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		skills = append(skills, domain.Skill{Name: s})
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	now := time.Now()
	emp := domain.Employee{
		ID:                uuid.New().String(),
		Name:              name,
		Skills:            skills,
		ProductivityScore: employeeProductivity,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := d.DB.InsertEmployee(cmd.Context(), emp); err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}

	fmt.Printf("Registered employee %s (%s)\n", emp.Name, emp.ID)
	return nil
}

var employeeListCmd = &cobra.Command{
	Use:   "employee-list",
	Short: "List active employees",
	RunE:  runEmployeeList,
}

func runEmployeeList(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	employees, err := d.DB.ListActiveEmployees(cmd.Context())
	if err != nil {
		return err
	}

	if len(employees) == 0 {
		fmt.Println("No active employees. Run 'roster employee-add <name>' to register one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSKILLS\tWORKLOAD\tPRODUCTIVITY")
	for _, e := range employees {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\n",
			e.ID, e.Name, strings.Join(e.SkillNames(), ","), e.Workload, e.ProductivityScore)
	}
	return w.Flush()
}
