package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		assembly, err := buildAssembly(cfg, logger, nil)
		if err != nil {
			fmt.Printf("Error initializing plume: %v\n", err)
			os.Exit(1)
		}

		ids, err := assembly.Sessions.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing sessions: %v\n", err)
			os.Exit(1)
		}
		if len(ids) == 0 {
			fmt.Println("No stored sessions.")
			return
		}
		for _, id := range ids {
			fmt.Println(id)
		}
	},
}

var sessionsResetCmd = &cobra.Command{
	Use:   "reset <session-id>",
	Short: "Reset a session to its initial state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		assembly, err := buildAssembly(cfg, logger, nil)
		if err != nil {
			fmt.Printf("Error initializing plume: %v\n", err)
			os.Exit(1)
		}

		if err := assembly.Engine.Reset(cmd.Context(), args[0]); err != nil {
			fmt.Printf("Error resetting session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Session %q reset.\n", args[0])
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsResetCmd)
	rootCmd.AddCommand(sessionsCmd)
}
