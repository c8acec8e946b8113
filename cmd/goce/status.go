/*
 * status.go, part of goCE.
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
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tsaari/goce/track"
)

var statusFileArg string

func newStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Inspect a workflow history file",
		Long: `The status subcommand loads a JSON workflow history,
verifies that its fact sequence is a legal walk of the module cycle
and prints where the workflow stands.`,
		RunE: statusFunc,
	}
	statusCmd.Flags().StringVarP(&statusFileArg, "file", "f", "", "history JSON file")
	if err := statusCmd.MarkFlagRequired("file"); err != nil {
		log.Fatalf("Failed to mark `file` flag for `status` subcommand as required")
	}
	return statusCmd
}

func statusFunc(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(statusFileArg)
	if err != nil {
		return errors.Wrapf(err, "reading the history file '%s' failed", statusFileArg)
	}
	h := track.NewHistory()
	if err := json.Unmarshal(data, h); err != nil {
		return errors.Wrapf(err, "the history file '%s' is not a legal workflow record", statusFileArg)
	}
	fmt.Printf("facts: %d\n", h.Len())
	if last, ok := h.Position(); ok {
		fmt.Printf("position: %s (at %s)\n", last, last.When.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("position: before the first iteration")
	}
	if iter, m, ready := h.Next(); ready {
		fmt.Printf("next: %s of iteration %d\n", m, iter)
	} else {
		fmt.Println("next: waiting for the running module to end")
	}
	fp, err := h.Fingerprint()
	if err != nil {
		return errors.Wrap(err, "fingerprinting the history failed")
	}
	fmt.Printf("fingerprint: %016x\n", fp)
	return nil
}
