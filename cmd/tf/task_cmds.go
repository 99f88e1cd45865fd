package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parentFlag string

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var parent *string
		if parentFlag != "" {
			parent = &parentFlag
		}
		id, err := engine.CreateTask(cmd.Context(), args[0], parent)
		if err != nil {
			return err
		}
		fmt.Println(accentStyle.Render(id))
		return nil
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <task-id> <title>",
	Short: "Rename a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.RenameTask(cmd.Context(), args[0], args[1])
	},
}

var reparentCmd = &cobra.Command{
	Use:   "reparent <task-id> [new-parent-id]",
	Short: "Move a task under a new parent (omit to move to root)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var newParent *string
		if len(args) == 2 {
			newParent = &args[1]
		}
		return engine.ReparentTask(cmd.Context(), args[0], newParent)
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <task-id>",
	Short: "Archive a task and its subtree, stopping any running members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := engine.ArchiveTask(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("archived %d task(s), stopped %d running\n", len(result.ArchivedIDs), len(result.StoppedIDs))
		return nil
	},
}

var hardDeleteFlag bool

var deleteCmd = &cobra.Command{
	Use:   "delete <task-id>...",
	Short: "Delete tasks (soft by default; --hard requires them archived)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.DeleteTasks(cmd.Context(), args, hardDeleteFlag)
	},
}

var tagCmd = &cobra.Command{
	Use:   "tag <task-id> <tag-name>",
	Short: "Attach a tag to a task, creating it if absent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.AddTagToTask(cmd.Context(), args[0], args[1])
	},
}

var untagCmd = &cobra.Command{
	Use:   "untag <task-id> <tag-name>",
	Short: "Remove a tag from a task",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.RemoveTagFromTask(cmd.Context(), args[0], args[1])
	},
}

func init() {
	createCmd.Flags().StringVar(&parentFlag, "parent", "", "parent task id")
	deleteCmd.Flags().BoolVar(&hardDeleteFlag, "hard", false, "hard delete (requires tasks already archived)")
}
