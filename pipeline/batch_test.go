/*
 * batch_test.go, part of MEPS.
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

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

func writeXYZ(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

const waterXYZ = "3\nw\nO 0.0 0.0 0.1173\nH 0.0 0.7572 -0.4692\nH 0.0 -0.7572 -0.4692\n"

func TestDiscoverSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeXYZ(t, dir, "b.xyz", waterXYZ)
	writeXYZ(t, dir, "a.pdb", "")
	writeXYZ(t, dir, "notes.txt", "not a structure")
	if err := os.Mkdir(filepath.Join(dir, "sub.xyz"), 0755); err != nil {
		t.Fatal(err)
	}
	files, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "a.pdb" || filepath.Base(files[1]) != "b.xyz" {
		t.Errorf("not sorted: %v", files)
	}
}

func TestEnumeratePairs(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	for _, n := range []string{"a1.xyz", "a2.xyz", "a3.xyz"} {
		writeXYZ(t, dirA, n, waterXYZ)
	}
	for _, n := range []string{"b1.xyz", "b2.xyz"} {
		writeXYZ(t, dirB, n, waterXYZ)
	}
	pairs, err := EnumeratePairs(dirA, dirB)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 6 {
		t.Fatalf("got %d pairs, want 6", len(pairs))
	}
	//A-major order
	if pairs[0].Name != "a1_b1" || pairs[1].Name != "a1_b2" || pairs[2].Name != "a2_b1" {
		t.Errorf("pair order wrong: %v %v %v", pairs[0].Name, pairs[1].Name, pairs[2].Name)
	}
}

func TestEnumeratePairsEmptyDir(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeXYZ(t, dirB, "b.xyz", waterXYZ)
	_, err := EnumeratePairs(dirA, dirB)
	if _, ok := err.(*EmptyInputError); !ok {
		t.Errorf("expected *EmptyInputError, got %v", err)
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	for _, n := range []string{"a1.xyz", "a2.xyz", "a3.xyz"} {
		writeXYZ(t, dirA, n, waterXYZ)
	}
	writeXYZ(t, dirB, "b1.xyz", waterXYZ)
	writeXYZ(t, dirB, "broken.xyz", waterXYZ)
	pairs, err := EnumeratePairs(dirA, dirB)
	if err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	b := &Batch{
		OutputDir:   out,
		MaxParallel: 2,
		Factory: func(workDir string) (*Pipeline, error) {
			//jobs touching broken.xyz hit an engine failure
			return New(&stubEngine{failSubstr: "broken"}, nil, Options{
				WorkDir: workDir, Method: "B3LYP", Basis: "sto-3g",
				MonitorInterval: time.Millisecond,
			})
		},
	}
	summary, err := b.RunAll(context.Background(), pairs)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Total != 6 || summary.Succeeded != 3 || summary.Failed != 3 {
		t.Fatalf("summary %d/%d/%d, want 6 total, 3 ok, 3 failed",
			summary.Total, summary.Succeeded, summary.Failed)
	}
	//results keep input order despite concurrent execution
	if summary.Results[0].Pair != "a1_b1" || summary.Results[5].Pair != "a3_broken" {
		t.Errorf("result order wrong: first %q last %q",
			summary.Results[0].Pair, summary.Results[5].Pair)
	}
	for _, r := range summary.Results {
		if strings.Contains(r.Pair, "broken") == r.OK {
			t.Errorf("pair %s: ok=%v inconsistent with its input", r.Pair, r.OK)
		}
		if !r.OK && r.Error == "" {
			t.Errorf("pair %s failed without an error message", r.Pair)
		}
	}
	//the summary file must exist and mention the failures
	raw, err := os.ReadFile(filepath.Join(out, "batch_summary.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "\"failed\": 3") {
		t.Errorf("summary json wrong:\n%s", raw)
	}
}

func TestBatchWorkers(t *testing.T) {
	b := &Batch{MaxParallel: 3}
	if b.Workers() != 3 {
		t.Errorf("override ignored: %d", b.Workers())
	}
	b = &Batch{NProcPerJob: 1 << 20} //more cores per job than the host has
	if b.Workers() != 1 {
		t.Errorf("workers must floor at 1, got %d", b.Workers())
	}
}

func TestArchiveLogs(t *testing.T) {
	dir := t.TempDir()
	content := strings.Repeat("SCF Done: E = -76.4\n", 100)
	if err := os.WriteFile(filepath.Join(dir, "job.log"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keep.gjf"), []byte("input"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ArchiveLogs(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "job.log")); !os.IsNotExist(err) {
		t.Error("original log not removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.gjf")); err != nil {
		t.Error("non-log file touched by archiving")
	}
	f, err := os.Open(filepath.Join(dir, "job.log.gz"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var b strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := zr.Read(buf)
		b.Write(buf[:n])
		if err != nil {
			break
		}
	}
	if b.String() != content {
		t.Error("gzip round trip lost content")
	}
}
