/*
 * watch.go, part of goCE.
 *
 * Copyright 2023 The goCE developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tsaari/goce/calcmon"
)

var (
	watchDirArg      string
	watchIntervalArg time.Duration
	watchTimeoutArg  time.Duration
	watchForArg      time.Duration
)

func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Wait on a marker-file calculation queue",
		Long: `The watch subcommand drains a directory queue: every
"<id>.sub" file marks a submitted calculation and "<id>.done" its
completion. It polls on the given interval and wakes early on
filesystem events in the directory.`,
		RunE: watchFunc,
	}
	watchCmd.Flags().StringVarP(&watchDirArg, "dir", "d", "", "queue directory")
	if err := watchCmd.MarkFlagRequired("dir"); err != nil {
		log.Fatalf("Failed to mark `dir` flag for `watch` subcommand as required")
	}
	watchCmd.Flags().DurationVarP(&watchIntervalArg, "interval", "i", 15*time.Second, "polling period")
	watchCmd.Flags().DurationVar(&watchTimeoutArg, "timeout", 0, "per-entry timeout, 0 to disable")
	watchCmd.Flags().DurationVar(&watchForArg, "for", 0, "overall waiting budget, 0 to wait forever")
	return watchCmd
}

func watchFunc(cmd *cobra.Command, args []string) error {
	q, err := calcmon.NewDirQueue(watchDirArg)
	if err != nil {
		return err
	}
	opts := calcmon.DefaultOptions().
		Interval(watchIntervalArg).
		Timeout(watchTimeoutArg).
		WatchDir(watchDirArg).
		Logger(log.StandardLogger())
	m, err := calcmon.New(q, opts)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if watchForArg > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchForArg)
		defer cancel()
	}
	report, err := m.Wait(ctx)
	if report != nil {
		fmt.Printf("finished (%d): %v\n", len(report.Finished), report.Finished)
		fmt.Printf("timed out (%d): %v\n", len(report.TimedOut), report.TimedOut)
		fmt.Printf("pending (%d): %v\n", len(report.Pending), report.Pending)
		fmt.Printf("elapsed: %v\n", report.Elapsed.Round(time.Millisecond))
	}
	if err != nil {
		return errors.Wrap(err, "the queue did not drain")
	}
	return nil
}
