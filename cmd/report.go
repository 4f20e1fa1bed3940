package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/jsphweid/midifile/constants"
	"github.com/jsphweid/midifile/logger"
	"github.com/jsphweid/midifile/midi"
	"github.com/jsphweid/midifile/smferr"
	"github.com/jsphweid/midifile/timing"
	"github.com/jsphweid/midifile/util"
	"github.com/spf13/cobra"
)

var reportMax int

func init() {
	reportCmd.Flags().IntVar(&reportMax, "max", 0, "maximum number of files to decode, 0 for all")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [dir]",
	Short: "Decodes every MIDI file under a directory and reports totals",
	Long:  `Decodes every .mid and .midi file under dir (default $MIDI_PATH) and reports decode failures by kind.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := constants.GetMidiDir()
		if len(args) == 1 {
			dir = args[0]
		}
		r, err := analyzeFiles(dir, reportMax)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), r)
		return nil
	},
}

type filesReport struct {
	numFiles       int
	numDecoded     int
	failuresByKind map[string]int
	eventsPerFile  []int
	numTracks      int
	totalDuration  time.Duration
}

func analyzeFiles(dir string, maxNum int) (filesReport, error) {
	report := filesReport{failuresByKind: make(map[string]int)}

	paths, err := util.GatherAllMidiPaths(dir, maxNum)
	if err != nil {
		return report, err
	}

	log := logger.GetLogger()
	for i, path := range paths {
		log.Debug("Processing midi file", "n", i+1, "of", len(paths), "path", path)
		report.numFiles += 1

		doc, err := midi.ReadMidiFile(path)
		if err != nil {
			log.Warn("Skipping file", "path", path, "err", err)
			report.failuresByKind[smferr.KindOf(err).String()] += 1
			continue
		}

		report.numDecoded += 1
		report.numTracks += len(doc.Tracks)
		var events int
		for _, track := range doc.Tracks {
			events += len(track)
		}
		report.eventsPerFile = append(report.eventsPerFile, events)
		report.totalDuration += timing.Duration(doc)
	}
	return report, nil
}

func printReport(w io.Writer, r filesReport) {
	fmt.Fprintf(w, "files: %v\n", r.numFiles)
	fmt.Fprintf(w, "decoded: %v\n", r.numDecoded)
	fmt.Fprintf(w, "failed: %v\n", r.numFiles-r.numDecoded)
	for _, kind := range util.GetKeys(r.failuresByKind) {
		fmt.Fprintf(w, "  %v: %v\n", kind, r.failuresByKind[kind])
	}
	fmt.Fprintf(w, "tracks: %v\n", r.numTracks)
	fmt.Fprintf(w, "events: %v\n", util.Sum(r.eventsPerFile))
	fmt.Fprintf(w, "duration: %v\n", r.totalDuration.Round(time.Millisecond))
}
