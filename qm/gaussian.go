/*
 * gaussian.go, part of MEPS.
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

//Package qm drives Gaussian 16 calculations: input generation, process
//execution with a prepared environment, and termination monitoring.
package qm

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

//Config locates and sizes a Gaussian installation. Zero values fall
//back to the g16root environment variable and single-core execution.
type Config struct {
	Root  string //the g16root directory, containing the g16 subdirectory
	Mem   string //Gaussian memory string, e.g. "4GB"
	NProc int    //value for %nprocshared
}

//Status of a Gaussian job as read from its output file.
type Status int

const (
	Running Status = iota
	Done
	Failed
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "running"
}

//Gaussian runs g16 jobs. Build one with NewGaussian; the zero value is
//not usable.
type Gaussian struct {
	root string
	exe  string
	mem  string
	np   int
	env  []string
}

//NewGaussian probes the installation under cfg.Root (or $g16root when
//Root is empty) and prepares the environment g16 needs. It fails with
//a *NotFoundError when no executable is present, so a misconfigured
//host is caught before any job is queued.
func NewGaussian(cfg Config) (*Gaussian, error) {
	root := cfg.Root
	if root == "" {
		root = os.Getenv("g16root")
	}
	if root == "" {
		return nil, &NotFoundError{Probed: "$g16root (unset)"}
	}
	exedir := filepath.Join(root, "g16")
	exe := filepath.Join(exedir, "g16")
	if _, err := os.Stat(exe); err != nil {
		return nil, &NotFoundError{Probed: exe}
	}
	np := cfg.NProc
	if np < 1 {
		np = 1
	}
	mem := cfg.Mem
	if mem == "" {
		mem = "4GB"
	}
	g := &Gaussian{root: root, exe: exe, mem: mem, np: np}
	g.env = append(os.Environ(),
		"g16root="+root,
		"GAUSS_EXEDIR="+exedir,
		"PATH="+exedir+string(os.PathListSeparator)+os.Getenv("PATH"),
	)
	return g, nil
}

//Mem returns the configured memory string.
func (G *Gaussian) Mem() string { return G.mem }

//NProc returns the configured shared-processor count.
func (G *Gaussian) NProc() int { return G.np }

//Run executes g16 on the given input file, writing the log next to it
//with the .log extension. With wait true it blocks until the process
//exits or ctx is cancelled; otherwise it starts the job and returns.
//A nil error with wait true does not mean chemistry succeeded, only
//that the process exited cleanly; check Status for the termination.
func (G *Gaussian) Run(ctx context.Context, input string, wait bool) error {
	logpath := strings.TrimSuffix(input, filepath.Ext(input)) + ".log"
	out, err := os.Create(logpath)
	if err != nil {
		return err
	}
	command := exec.CommandContext(ctx, G.exe, input)
	command.Env = G.env
	command.Dir = filepath.Dir(input)
	command.Stdout = out
	command.Stderr = out
	if wait {
		defer out.Close()
		err = command.Run()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		//g16 exits nonzero on error termination; the log carries the
		//real diagnostic, so defer to Status
		if err != nil {
			if st, serr := G.Status(logpath); serr == nil && st != Running {
				return nil
			}
		}
		return err
	}
	if err := command.Start(); err != nil {
		out.Close()
		return err
	}
	go func() {
		command.Wait()
		out.Close()
	}()
	return nil
}

//Status classifies the output file by its termination lines. Restarted
//or multi-step logs can contain several termination messages; the last
//one found is authoritative. A log with none is still running.
func (G *Gaussian) Status(output string) (Status, error) {
	f, err := os.Open(output)
	if err != nil {
		return Running, err
	}
	defer f.Close()
	st := Running
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "Normal termination of Gaussian") {
			st = Done
		} else if strings.Contains(line, "Error termination") {
			st = Failed
		}
	}
	return st, scanner.Err()
}

//ErrorLines returns the diagnostic lines near the last error
//termination of the output, for embedding in a TerminationError.
func (G *Gaussian) ErrorLines(output string) []string {
	f, err := os.Open(output)
	if err != nil {
		return nil
	}
	defer f.Close()
	var window []string
	var captured []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			window = append(window, line)
			if len(window) > 4 {
				window = window[1:]
			}
		}
		if strings.Contains(line, "Error termination") {
			captured = append([]string{}, window...)
		}
	}
	return captured
}

//Monitor polls the output file until the job terminates, ctx is
//cancelled, or maxWait elapses. It returns nil on normal termination,
//a *TerminationError on error termination, and a *TimeoutError when
//the ceiling is hit, so a hung job cannot stall a batch forever.
func (G *Gaussian) Monitor(ctx context.Context, output string, interval, maxWait time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	deadline := time.Now().Add(maxWait)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		st, err := G.Status(output)
		if err == nil {
			switch st {
			case Done:
				return nil
			case Failed:
				return &TerminationError{Output: output, Lines: G.ErrorLines(output)}
			}
		} else if !os.IsNotExist(err) {
			return err
		}
		if maxWait > 0 && time.Now().After(deadline) {
			return &TimeoutError{Output: output, MaxWait: maxWait}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

//FormChk converts a checkpoint to formatted form with the formchk
//utility shipped alongside g16.
func (G *Gaussian) FormChk(ctx context.Context, chk string) error {
	formchk := filepath.Join(filepath.Dir(G.exe), "formchk")
	command := exec.CommandContext(ctx, formchk, chk)
	command.Env = G.env
	out, err := command.CombinedOutput()
	if err != nil {
		return fmt.Errorf("qm: formchk %s: %v: %s", chk, err, strings.TrimSpace(string(out)))
	}
	return nil
}
