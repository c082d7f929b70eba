package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Telegram bot for student-day interviews",
	Long:  `Runs the interview dialog over Telegram and keeps a shared Excel table of every completed interview.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
