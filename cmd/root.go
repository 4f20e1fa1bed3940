package cmd

import (
	"github.com/jsphweid/midifile/constants"
	"github.com/jsphweid/midifile/logger"
	"github.com/spf13/cobra"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "midifile",
	Short: "Standard MIDI File decoder",
	Long:  `Decodes Standard MIDI Files into headers, tracks and timed events.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.InitLogger(logLevel)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", constants.GetLogLevel(), "debug, info, warn or error")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
