/*
 * dirqueue.go, part of goCE.
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

package calcmon

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//DirQueue is a Queue over a plain directory, for calculation runners
//that communicate through marker files: "<id>.sub" marks a submitted
//entry and "<id>.done" its completion. Pair it with WatchDir on the same
//directory to resolve entries as soon as the markers land.
type DirQueue struct {
	dir string
}

//NewDirQueue returns a DirQueue over dir, which must exist.
func NewDirQueue(dir string) (*DirQueue, error) {
	fi, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "opening the queue directory '%s' failed", dir)
	}
	if !fi.IsDir() {
		return nil, errors.Errorf("queue path '%s' is not a directory", dir)
	}
	return &DirQueue{dir: dir}, nil
}

//Submitted lists the ids with a ".sub" marker, sorted.
func (q *DirQueue) Submitted(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(q.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing the queue directory '%s' failed", q.dir)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), ".sub"); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

//Finished reports whether the ".done" marker of the entry exists.
func (q *DirQueue) Finished(_ context.Context, id string) (bool, error) {
	_, err := os.Stat(filepath.Join(q.dir, id+".done"))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "checking entry '%s' failed", id)
}
