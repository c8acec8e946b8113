/*
 * options.go, part of goCE.
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
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//Options configures a Monitor. The zero value of each field means its
//default; the setters return the object so calls chain.
type Options struct {
	interval time.Duration
	timeout  time.Duration
	retries  int
	watch    string
	logger   *logrus.Logger
}

//DefaultOptions returns the default configuration: 30 s polls, no
//per-entry timeout, 2 retries per failed query and no marker directory.
func DefaultOptions() *Options {
	return &Options{
		interval: 30 * time.Second,
		retries:  2,
	}
}

//Interval sets the polling period.
func (o *Options) Interval(d time.Duration) *Options {
	o.interval = d
	return o
}

//Timeout sets the per-entry timeout. Zero disables it.
func (o *Options) Timeout(d time.Duration) *Options {
	o.timeout = d
	return o
}

//Retries sets how many times a failed queue query is repeated before
//Wait gives up.
func (o *Options) Retries(n int) *Options {
	o.retries = n
	return o
}

//WatchDir sets a directory whose filesystem events trigger immediate
//re-polls, for queues that drop completion marker files.
func (o *Options) WatchDir(dir string) *Options {
	o.watch = dir
	return o
}

//Logger sets the logger.
func (o *Options) Logger(l *logrus.Logger) *Options {
	o.logger = l
	return o
}

func (o *Options) fill() *Options {
	def := DefaultOptions()
	if o == nil {
		o = def
	}
	if o.interval == 0 {
		o.interval = def.interval
	}
	if o.logger == nil {
		o.logger = logrus.New()
		o.logger.SetLevel(logrus.WarnLevel)
	}
	return o
}

func (o *Options) check() error {
	if o.interval <= 0 {
		return errors.Errorf("calcmon: polling interval %v is not positive", o.interval)
	}
	if o.timeout < 0 {
		return errors.Errorf("calcmon: per-entry timeout %v is negative", o.timeout)
	}
	if o.retries < 0 {
		return errors.Errorf("calcmon: retry budget %d is negative", o.retries)
	}
	return nil
}
