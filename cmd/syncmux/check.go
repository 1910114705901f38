package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/syncmux/internal/check"
	"github.com/backmassage/syncmux/internal/logging"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external tools (mkvmerge, mkvextract, ffmpeg, ffprobe, rubberband) are on PATH",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(&rootFlags)
			if err != nil {
				return err
			}
			defer log.Close()
			check.Run(log)
			return nil
		},
	}
}
