/*
 * calcmon.go, part of goCE.
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

//Package calcmon waits on external calculation queues. A Monitor polls a
//Queue until every tracked entry finishes or times out, optionally waking
//early when completion markers appear in a watched directory. The heavy
//lifting (submitting jobs, parsing their output) belongs to the caller;
//this package only answers "is everything done yet".
package calcmon

import (
	"context"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//Queue is the calcmon view of an external calculation backend. Submitted
//lists the entries currently in the queue; Finished reports whether one
//entry has completed. Both may be asked repeatedly for the same entry.
type Queue interface {
	Submitted(ctx context.Context) ([]string, error)
	Finished(ctx context.Context, id string) (bool, error)
}

//Report summarizes a finished Wait.
type Report struct {
	Finished []string
	TimedOut []string
	Pending  []string
	Elapsed  time.Duration
}

//Monitor polls a Queue on a fixed interval.
type Monitor struct {
	q   Queue
	o   *Options
	log *logrus.Logger
}

//New returns a Monitor over the queue. A nil Options means defaults.
func New(q Queue, o *Options) (*Monitor, error) {
	if q == nil {
		return nil, errors.New("calcmon: nil queue")
	}
	o = o.fill()
	if err := o.check(); err != nil {
		return nil, err
	}
	return &Monitor{q: q, o: o, log: o.logger}, nil
}

//Wait blocks until every entry the queue lists is finished or timed out,
//polling on the configured interval. Entries submitted while waiting are
//picked up. When a watch directory is configured, filesystem events there
//trigger an immediate re-poll. Wait returns the partial Report along with
//the error when the context ends or the queue keeps failing past the
//retry budget.
func (m *Monitor) Wait(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := new(Report)
	var events chan fsnotify.Event
	var werrs chan error
	if m.o.watch != "" {
		notify, err := fsnotify.NewWatcher()
		if err != nil {
			return report, errors.Wrap(err, "starting the marker watcher failed")
		}
		defer notify.Close()
		if err := notify.Add(m.o.watch); err != nil {
			return report, errors.Wrapf(err, "watching '%s' failed", m.o.watch)
		}
		m.log.Debugf("monitoring path '%v'", m.o.watch)
		events = notify.Events
		werrs = notify.Errors
	}
	ticker := time.NewTicker(m.o.interval)
	defer ticker.Stop()
	pending := make(map[string]time.Time)
	handled := make(map[string]bool)
	for {
		if err := m.poll(ctx, pending, handled, report); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}
		if len(pending) == 0 {
			report.Elapsed = time.Since(start)
			m.log.WithFields(logrus.Fields{
				"finished": len(report.Finished),
				"timedout": len(report.TimedOut),
			}).Info("queue drained")
			return report, nil
		}
		select {
		case <-ctx.Done():
			for _, id := range sortedKeys(pending) {
				report.Pending = append(report.Pending, id)
			}
			report.Elapsed = time.Since(start)
			return report, errors.Wrap(ctx.Err(), "monitoring interrupted")
		case ev := <-events:
			m.log.Debugf("marker event: %v", ev)
		case err := <-werrs:
			m.log.Warnf("watcher error: %v", err)
		case <-ticker.C:
		}
	}
}

//poll refreshes the pending set from the queue and resolves what it can.
func (m *Monitor) poll(ctx context.Context, pending map[string]time.Time, handled map[string]bool, report *Report) error {
	ids, err := m.submitted(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, id := range ids {
		if handled[id] {
			continue
		}
		if _, ok := pending[id]; !ok {
			pending[id] = now
			m.log.WithField("entry", id).Info("tracking queue entry")
		}
	}
	for _, id := range sortedKeys(pending) {
		if m.o.timeout > 0 && time.Since(pending[id]) > m.o.timeout {
			delete(pending, id)
			handled[id] = true
			report.TimedOut = append(report.TimedOut, id)
			m.log.WithField("entry", id).Warn("entry timed out")
			continue
		}
		done, err := m.finished(ctx, id)
		if err != nil {
			return err
		}
		if done {
			delete(pending, id)
			handled[id] = true
			report.Finished = append(report.Finished, id)
			m.log.WithField("entry", id).Info("entry finished")
		}
	}
	return nil
}

//submitted queries the queue listing within the retry budget.
func (m *Monitor) submitted(ctx context.Context) ([]string, error) {
	var err error
	for try := 0; try <= m.o.retries; try++ {
		var ids []string
		ids, err = m.q.Submitted(ctx)
		if err == nil {
			return ids, nil
		}
		m.log.WithField("try", try).Warnf("queue listing failed: %v", err)
	}
	return nil, errors.Wrapf(err, "listing the queue failed after %d tries", m.o.retries+1)
}

//finished queries one entry within the retry budget.
func (m *Monitor) finished(ctx context.Context, id string) (bool, error) {
	var err error
	for try := 0; try <= m.o.retries; try++ {
		var done bool
		done, err = m.q.Finished(ctx, id)
		if err == nil {
			return done, nil
		}
		m.log.WithFields(logrus.Fields{"entry": id, "try": try}).Warnf("queue query failed: %v", err)
	}
	return false, errors.Wrapf(err, "querying entry '%s' failed after %d tries", id, m.o.retries+1)
}

func sortedKeys(m map[string]time.Time) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
