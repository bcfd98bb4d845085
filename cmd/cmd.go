package cmd

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "trip-indo",
	Short: "trip planning backend",
	Long:  `Backend API for Trip Indo: trips, destinations, activities, shared expenses and email invitations.`,
}

func init() {
	RootCmd.AddCommand(serveCommand())
	RootCmd.AddCommand(migrateCommand())
}
