/*
 * qm_test.go, part of MEPS.
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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	meps "github.com/zhangshd/MEPS"
)

func dimer() *meps.Structure {
	s := meps.New()
	s.Atoms = []meps.Atom{
		{Symbol: "O", X: 0, Y: 0, Z: 0.1173},
		{Symbol: "H", X: 0, Y: 0.7572, Z: -0.4692},
		{Symbol: "H", X: 0, Y: -0.7572, Z: -0.4692},
		{Symbol: "C", X: 3.0, Y: 0, Z: 0},
		{Symbol: "H", X: 3.629, Y: 0.629, Z: 0.629},
		{Symbol: "H", X: 2.371, Y: -0.629, Z: 0.629},
		{Symbol: "H", X: 2.371, Y: 0.629, Z: -0.629},
		{Symbol: "H", X: 3.629, Y: -0.629, Z: -0.629},
	}
	return s
}

func TestNewGaussianMissingInstall(t *testing.T) {
	_, err := NewGaussian(Config{Root: t.TempDir()})
	if err == nil {
		t.Fatal("expected failure for an empty root directory")
	}
	if _, ok := err.(*NotFoundError); !ok {
		t.Errorf("expected *NotFoundError, got %T", err)
	}
}

func fakeInstall(t *testing.T) *Gaussian {
	t.Helper()
	root := t.TempDir()
	exedir := filepath.Join(root, "g16")
	if err := os.MkdirAll(exedir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(exedir, "g16"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	g, err := NewGaussian(Config{Root: root, Mem: "8GB", NProc: 4})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestStatusLastTerminationWins(t *testing.T) {
	g := fakeInstall(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "job.log")
	content := " some output\n Error termination via Lnk1e in l9999\n" +
		" restarted\n Normal termination of Gaussian 16 at Mon Jan  6 2025.\n"
	if err := os.WriteFile(log, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	st, err := g.Status(log)
	if err != nil {
		t.Fatal(err)
	}
	if st != Done {
		t.Errorf("status %v, the later normal termination should win", st)
	}
	//and the other way around
	content = " Normal termination of Gaussian 16.\n more work\n Error termination request.\n"
	if err := os.WriteFile(log, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	st, _ = g.Status(log)
	if st != Failed {
		t.Errorf("status %v, the later error termination should win", st)
	}
}

func TestStatusRunning(t *testing.T) {
	g := fakeInstall(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "job.log")
	if err := os.WriteFile(log, []byte(" SCF Done: E = -76.4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	st, err := g.Status(log)
	if err != nil || st != Running {
		t.Errorf("status %v err %v, want running", st, err)
	}
}

func TestMonitorFindsTermination(t *testing.T) {
	g := fakeInstall(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "job.log")
	if err := os.WriteFile(log, []byte(" working\n"), 0644); err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(30 * time.Millisecond)
		os.WriteFile(log, []byte(" Normal termination of Gaussian 16.\n"), 0644)
	}()
	err := g.Monitor(context.Background(), log, 10*time.Millisecond, 5*time.Second)
	if err != nil {
		t.Errorf("monitor should see the normal termination, got %v", err)
	}
}

func TestMonitorTimeout(t *testing.T) {
	g := fakeInstall(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "job.log")
	if err := os.WriteFile(log, []byte(" working\n"), 0644); err != nil {
		t.Fatal(err)
	}
	err := g.Monitor(context.Background(), log, 10*time.Millisecond, 50*time.Millisecond)
	if _, ok := err.(*TimeoutError); !ok {
		t.Errorf("expected *TimeoutError, got %v", err)
	}
}

func TestMonitorCancellation(t *testing.T) {
	g := fakeInstall(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "job.log")
	if err := os.WriteFile(log, []byte(" working\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := g.Monitor(ctx, log, 10*time.Millisecond, time.Hour)
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMonitorReportsErrorLines(t *testing.T) {
	g := fakeInstall(t)
	dir := t.TempDir()
	log := filepath.Join(dir, "job.log")
	content := " Convergence failure -- run terminated.\n" +
		" Error termination via Lnk1e in /opt/g16/l502.exe\n"
	if err := os.WriteFile(log, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	err := g.Monitor(context.Background(), log, 10*time.Millisecond, time.Second)
	te, ok := err.(*TerminationError)
	if !ok {
		t.Fatalf("expected *TerminationError, got %v", err)
	}
	if !strings.Contains(te.Error(), "Convergence failure") {
		t.Errorf("diagnostic lines not captured: %v", te)
	}
}

func TestWriteOptInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "water.gjf")
	s := meps.New()
	s.Atoms = dimer().Atoms[:3]
	job := Job{Method: "B3LYP", Basis: "6-311++G(d,p)", Dispersion: "GD3BJ",
		Freq: true, Mem: "8GB", NProc: 4}
	if err := WriteOptInput(path, job, s); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	for _, want := range []string{
		"%chk=water.chk",
		"%mem=8GB",
		"%nprocshared=4",
		"#p opt freq B3LYP/6-311++G(d,p) empiricaldispersion=GD3BJ",
		"0 1\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("input missing %q:\n%s", want, text)
		}
	}
}

func TestWriteOptInputValidation(t *testing.T) {
	dir := t.TempDir()
	if err := WriteOptInput(filepath.Join(dir, "x.gjf"), Job{Basis: "sto-3g"}, dimer()); err == nil {
		t.Error("missing method must be rejected")
	}
	job := Job{Method: "B3LYP", Basis: "sto-3g"}
	if err := WriteOptInput(filepath.Join(dir, "y.gjf"), job, meps.New()); err == nil {
		t.Error("empty structure must be rejected")
	}
}

func TestWriteCounterpoiseInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "complex.gjf")
	job := Job{Method: "B3LYP", Basis: "6-311++G(d,p)", Dispersion: "GD3BJ", Mem: "8GB", NProc: 4}
	if err := WriteCounterpoiseInput(path, job, dimer(), 3, 0, 1, 0, 1); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(raw)
	if !strings.Contains(text, "Counterpoise=2 NoSymm") {
		t.Errorf("route lacks counterpoise keywords:\n%s", text)
	}
	//total charge, fixed singlet, then per-fragment pairs
	if !strings.Contains(text, "0 1 0 1 0 1\n") {
		t.Errorf("charge line wrong:\n%s", text)
	}
	if strings.Count(text, "(Fragment=1)") != 3 {
		t.Errorf("fragment 1 should hold exactly the first 3 atoms:\n%s", text)
	}
	if strings.Count(text, "(Fragment=2)") != 5 {
		t.Errorf("fragment 2 should hold the remaining 5 atoms:\n%s", text)
	}
	//freq must never appear with counterpoise, even if requested
	job.Freq = true
	if err := WriteCounterpoiseInput(path, job, dimer(), 3, 0, 1, 0, 1); err != nil {
		t.Fatal(err)
	}
	raw, _ = os.ReadFile(path)
	if strings.Contains(string(raw), "opt freq") {
		t.Error("freq leaked into a counterpoise route")
	}
}

func TestWriteCounterpoiseBadBoundary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "complex.gjf")
	job := Job{Method: "B3LYP", Basis: "sto-3g"}
	for _, boundary := range []int{0, 8, -1} {
		if err := WriteCounterpoiseInput(path, job, dimer(), boundary, 0, 1, 0, 1); err == nil {
			t.Errorf("boundary %d must be rejected", boundary)
		}
	}
}
