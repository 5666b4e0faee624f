package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/api"
	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage saved tasks (add, list, show, update, delete, import)",
	Long: `Manage the task store in the base directory.

Saved tasks are what analyze, suggest, matrix and board rank when no --file
is given. Each task gets a sequential id that other tasks list in
--deps.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Save a new task",
	Long: `Save a new task. Only the title is required; a task without a due date is
ranked as due a week from now, one without an estimate as one hour of work
and one without an importance as 5 out of 10.

Examples:
  sta task add "Fix login bug" --due 2026-10-21 --hours 2 --importance 8
  sta task add "Release notes" --due 2026-10-24 --due-time 17:00 --deps 1,3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		in := api.TaskInput{Title: args[0]}
		flags := cmd.Flags()
		in.DueDate, _ = flags.GetString("due")
		in.DueTime, _ = flags.GetString("due-time")
		in.Role, _ = flags.GetString("role")
		in.Notes, _ = flags.GetString("notes")
		if flags.Changed("hours") {
			hours, _ := flags.GetFloat64("hours")
			in.EstimatedHours = &hours
		}
		if flags.Changed("importance") {
			importance, _ := flags.GetInt("importance")
			in.Importance = &importance
		}
		deps, _ := flags.GetStringSlice("deps")
		for _, dep := range deps {
			in.Dependencies = append(in.Dependencies, api.FlexibleID(strings.TrimSpace(dep)))
		}

		task, err := newConverter().Task(in)
		if err != nil {
			return err
		}

		created, err := TaskMgr.CreateTask(task)
		if err != nil {
			return fmt.Errorf("saving task: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", created.ID)
		return nil
	},
}

var (
	taskListRole  string
	taskListQuery string
	taskListJSON  bool
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved tasks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		tasks, err := TaskMgr.ListTasks(core.TaskQuery{Role: taskListRole, Query: taskListQuery})
		if err != nil {
			return fmt.Errorf("listing tasks: %w", err)
		}

		if taskListJSON {
			return writeJSON(cmd.OutOrStdout(), newRenderer().Tasks(tasks))
		}
		renderTaskList(cmd.OutOrStdout(), tasks, location())
		return nil
	},
}

var taskShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one saved task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		task, err := TaskMgr.GetTask(args[0])
		if err != nil {
			return taskError(args[0], err)
		}
		renderTaskDetail(cmd.OutOrStdout(), task, location())
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Change fields of a saved task",
	Long: `Change only the fields whose flags are given. Use --clear-due,
--clear-hours or --clear-importance to drop an optional value, and --deps ""
to remove every dependency. --due-time needs --due.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		body, err := patchDocument(cmd)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return errors.New("nothing to update; pass at least one field flag")
		}

		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding update: %w", err)
		}
		patch, err := newConverter().DecodeTaskPatch(data)
		if err != nil {
			return err
		}

		updated, err := TaskMgr.UpdateTask(args[0], patch)
		if err != nil {
			return taskError(args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated task %s\n", updated.ID)
		return nil
	},
}

// patchDocument turns the changed update flags into the same JSON document a
// PATCH request carries, so both paths share one validator.
func patchDocument(cmd *cobra.Command) (map[string]any, error) {
	flags := cmd.Flags()
	body := make(map[string]any)

	if flags.Changed("title") {
		body["title"], _ = flags.GetString("title")
	}
	if flags.Changed("due") {
		body["due_date"], _ = flags.GetString("due")
	}
	if flags.Changed("due-time") {
		body["due_time"], _ = flags.GetString("due-time")
	}
	if flags.Changed("hours") {
		body["estimated_hours"], _ = flags.GetFloat64("hours")
	}
	if flags.Changed("importance") {
		body["importance"], _ = flags.GetInt("importance")
	}
	if flags.Changed("deps") {
		deps, _ := flags.GetStringSlice("deps")
		ids := make([]string, 0, len(deps))
		for _, dep := range deps {
			if dep = strings.TrimSpace(dep); dep != "" {
				ids = append(ids, dep)
			}
		}
		body["dependencies"] = ids
	}
	if flags.Changed("role") {
		body["role"], _ = flags.GetString("role")
	}
	if flags.Changed("notes") {
		body["notes"], _ = flags.GetString("notes")
	}

	for flag, key := range map[string]string{
		"clear-due":        "due_date",
		"clear-hours":      "estimated_hours",
		"clear-importance": "importance",
	} {
		on, _ := flags.GetBool(flag)
		if !on {
			continue
		}
		if _, set := body[key]; set {
			return nil, fmt.Errorf("--%s cannot be combined with a new value", flag)
		}
		body[key] = nil
	}
	return body, nil
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a saved task",
	Long: `Delete a saved task. Other tasks that listed it as a dependency keep the
reference; analysis reports it as an unknown dependency and ignores it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		if err := TaskMgr.DeleteTask(args[0]); err != nil {
			return taskError(args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
		return nil
	},
}

var taskImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Save every task in a JSON or YAML file",
	Long: `Save a batch of tasks from a file (use - for stdin). The file takes the same
shapes as analyze --file. Dependencies may name other tasks in the file by
their id in the file; those references are rewritten to the new ids. The
batch is saved completely or not at all.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if TaskMgr == nil {
			return fmt.Errorf("task manager not initialized")
		}

		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		decoded, err := api.DecodeTaskFile(data, api.FormatFromPath(args[0]))
		if err != nil {
			return fmt.Errorf("reading %s: %w", inputName(args[0]), err)
		}
		tasks, err := newConverter().StoredTasks(decoded.Tasks)
		if err != nil {
			return fmt.Errorf("reading %s: %w", inputName(args[0]), err)
		}

		created, err := TaskMgr.ImportTasks(tasks)
		if err != nil {
			return fmt.Errorf("importing tasks: %w", err)
		}

		ids := make([]string, len(created))
		for i, t := range created {
			ids[i] = t.ID
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s): %s\n", len(created), strings.Join(ids, ", "))
		return nil
	},
}

func taskError(id string, err error) error {
	if errors.Is(err, core.ErrTaskNotFound) {
		return fmt.Errorf("task %s not found", id)
	}
	return err
}

// registerTaskFieldFlags adds the task field flags shared by add and update.
func registerTaskFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().String("due-time", "", "Due time of day (HH:MM); defaults to scoring.default_due_time")
	cmd.Flags().Float64("hours", 0, "Estimated hours of work")
	cmd.Flags().Int("importance", 0, "Importance from 1 to 10")
	cmd.Flags().StringSlice("deps", nil, "Ids of tasks this one depends on")
	cmd.Flags().String("role", "", "Role the task belongs to (developer, program_manager)")
	cmd.Flags().String("notes", "", "Free-form notes")
	_ = cmd.RegisterFlagCompletionFunc("role", completeRoles)
	_ = cmd.RegisterFlagCompletionFunc("deps", completeTaskIDs())
}

// registerTaskUpdateFlags adds the field flags plus the update-only ones.
func registerTaskUpdateFlags(cmd *cobra.Command) {
	registerTaskFieldFlags(cmd)
	cmd.Flags().String("title", "", "New title")
	cmd.Flags().Bool("clear-due", false, "Remove the due date")
	cmd.Flags().Bool("clear-hours", false, "Remove the estimate")
	cmd.Flags().Bool("clear-importance", false, "Remove the importance rating")
}

func init() {
	registerTaskFieldFlags(taskAddCmd)
	registerTaskUpdateFlags(taskUpdateCmd)
	taskUpdateCmd.ValidArgsFunction = completeTaskIDs()

	taskListCmd.Flags().StringVar(&taskListRole, "role", "", "Only tasks with this role")
	taskListCmd.Flags().StringVarP(&taskListQuery, "query", "q", "", "Only tasks whose title or notes contain this text")
	taskListCmd.Flags().BoolVar(&taskListJSON, "json", false, "Output tasks as JSON")
	_ = taskListCmd.RegisterFlagCompletionFunc("role", completeRoles)

	taskShowCmd.ValidArgsFunction = completeTaskIDs()
	taskDeleteCmd.ValidArgsFunction = completeTaskIDs()

	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskImportCmd)
	rootCmd.AddCommand(taskCmd)
}
