package cmd

import (
	"fmt"
	"io"

	"github.com/jsphweid/midifile/midi"
	"github.com/jsphweid/midifile/model"
	"github.com/jsphweid/midifile/timing"
	"github.com/spf13/cobra"
)

var (
	inspectTrack   int
	inspectSummary bool
)

func init() {
	inspectCmd.Flags().IntVar(&inspectTrack, "track", -1, "only print this track")
	inspectCmd.Flags().BoolVar(&inspectSummary, "summary", false, "only print the header and event counts")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Prints the decoded contents of a MIDI file",
	Long:  `Decodes a MIDI file and prints its header followed by every event of every track.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		return inspect(cmd.OutOrStdout(), doc, inspectTrack, inspectSummary)
	},
}

func inspect(w io.Writer, doc *model.Document, onlyTrack int, summary bool) error {
	if onlyTrack >= len(doc.Tracks) {
		return fmt.Errorf("track %d out of range, file has %d tracks", onlyTrack, len(doc.Tracks))
	}

	header := model.Header{FormatType: doc.FormatType, TrackCount: uint16(len(doc.Tracks)), TicksPerBeat: doc.TicksPerBeat}
	fmt.Fprintf(w, "%v\n", header)
	fmt.Fprintf(w, "duration: %v\n", timing.Duration(doc))

	for i, track := range doc.Tracks {
		if onlyTrack >= 0 && i != onlyTrack {
			continue
		}
		fmt.Fprintf(w, "track %d: %d events, %d ticks\n", i, len(track), track.EndTick())
		if summary {
			continue
		}
		ticks := track.AbsoluteTicks()
		for j, te := range track {
			fmt.Fprintf(w, "  %8d %10d  %-7v %s\n", te.DeltaTime, ticks[j], te.Event.Family(), describeEvent(te.Event))
		}
	}
	return nil
}
