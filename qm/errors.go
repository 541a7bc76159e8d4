/*
 * errors.go, part of MEPS.
 *
 * Copyright 2025 zhangshd
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

package qm

import (
	"fmt"
	"strings"
	"time"
)

//NotFoundError reports a Gaussian installation that could not be
//located, naming the path that was probed so the operator can fix the
//root directory instead of guessing.
type NotFoundError struct {
	Probed string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("qm: no Gaussian executable at %s (check the g16 root directory)", e.Probed)
}

//TerminationError reports an Error termination found in a Gaussian
//output, carrying the diagnostic lines captured around it.
type TerminationError struct {
	Output string
	Lines  []string
}

func (e *TerminationError) Error() string {
	if len(e.Lines) == 0 {
		return fmt.Sprintf("qm: error termination in %s", e.Output)
	}
	return fmt.Sprintf("qm: error termination in %s: %s", e.Output, strings.Join(e.Lines, " | "))
}

//TimeoutError reports a job that did not finish within the monitoring
//ceiling.
type TimeoutError struct {
	Output  string
	MaxWait time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("qm: %s did not terminate within %v", e.Output, e.MaxWait)
}
