package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stillcast/internal/ffmpeg"
	"stillcast/internal/media/ffprobe"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var rawJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the streams of a media file using ffprobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rawJSON {
				_, err := out.Write(append(result.RawJSON(), '\n'))
				return err
			}

			duration := "-"
			if seconds := result.DurationSeconds(); seconds > 0 {
				duration = ffmpeg.FormatClock(int(seconds))
			}
			fmt.Fprintln(out, renderKeyValues([][2]string{
				{"File", args[0]},
				{"Container", result.Format.FormatName},
				{"Duration", duration},
				{"Bitrate", formatBitRate(result.BitRate())},
			}))

			rows := make([][]string, 0, len(result.Streams))
			for _, stream := range result.Streams {
				rows = append(rows, []string{
					strconv.Itoa(stream.Index),
					stateLabel(stream.CodecType),
					stream.Describe(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Details"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&rawJSON, "json", false, "Print the raw ffprobe JSON")
	return cmd
}

func formatBitRate(bps int64) string {
	if bps <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d kb/s", bps/1000)
}
