package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ksim",
	Short: "Host simulator for the crtos-go kernel",
	Long: `ksim boots the crtos-go kernel on top of its host simulation
context switcher and drives it like an application image would: create
tasks, install timers, and exercise semaphores, queues, and circular
buffers. Unlike real firmware it never leaves the process that runs it.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenarioCmd)
}
