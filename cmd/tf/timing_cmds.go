package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start <task-id>",
	Short: "Start (or restart) a task, pausing whatever else is running",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.StartTask(cmd.Context(), args[0])
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause <task-id>",
	Short: "Pause the running task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.PauseTask(cmd.Context(), args[0])
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume <task-id>",
	Short: "Resume a paused task, pausing whatever else is running",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.ResumeTask(cmd.Context(), args[0])
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <task-id>",
	Short: "Stop a running or paused task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.StopTask(cmd.Context(), args[0])
	},
}

var subtaskCmd = &cobra.Command{
	Use:   "subtask <parent-id> <title>",
	Short: "Insert a subtask under a running task and start it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := engine.InsertSubtaskAndStart(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(accentStyle.Render(id))
		return nil
	},
}

var acceptFlag bool

var restCmd = &cobra.Command{
	Use:   "rest <suggestion-id>",
	Short: "Accept or ignore a rest suggestion (--accept to accept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.RespondRestSuggestion(cmd.Context(), args[0], acceptFlag)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Liveness probe",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pong, err := engine.Ping(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(passStyle.Render(pong))
		return nil
	},
}

func init() {
	restCmd.Flags().BoolVar(&acceptFlag, "accept", false, "accept the suggestion instead of ignoring it")
}
