package cli

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/photoharvest/pkg/models"
	"github.com/sdejongh/photoharvest/pkg/output"
)

// testHelper lays out a source device tree and an empty destination
type testHelper struct {
	t         *testing.T
	sourceDir string
	destDir   string
}

func newTestHelper(t *testing.T) *testHelper {
	t.Helper()

	// Keep the user's config out of the run
	t.Setenv("HOME", t.TempDir())

	tempDir := t.TempDir()
	h := &testHelper{
		t:         t,
		sourceDir: filepath.Join(tempDir, "device", "DCIM"),
		destDir:   filepath.Join(tempDir, "backup"),
	}
	for _, dir := range []string{h.sourceDir, h.destDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return h
}

func (h *testHelper) writeSource(rel string, data []byte) {
	h.t.Helper()
	path := filepath.Join(h.sourceDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		h.t.Fatalf("failed to write %s: %v", path, err)
	}
}

func (h *testHelper) destExists(rel string) bool {
	_, err := os.Stat(filepath.Join(h.destDir, filepath.FromSlash(rel)))
	return err == nil
}

// run executes the root command with args and returns stdout
func (h *testHelper) run(args ...string) (string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// tiffWithDateTime builds a minimal little-endian TIFF carrying an IFD0
// DateTime tag
func tiffWithDateTime(value string) []byte {
	data := append([]byte(value), 0)

	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(8))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(0x0132))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	binary.Write(&buf, binary.LittleEndian, uint32(8+2+12+4))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	buf.Write(data)
	return buf.Bytes()
}

func (h *testHelper) populate() {
	h.writeSource("202301__/IMG_0001.TIF", tiffWithDateTime("2023:01:15 02:15:00"))
	h.writeSource("202301__/IMG_0002.TIF", tiffWithDateTime("2023:01:15 02:15:00"))
	h.writeSource("202301__/IMG_0003.JPG", []byte("no exif"))
	h.writeSource("202301__/IMG_E0003.JPG", []byte("edited, no exif"))
	h.writeSource("202212__/IMG_0100.JPG", []byte("filtered out"))
	h.writeSource("202301__/notes.txt", []byte("ignored"))
}

func TestPlanCommand_JSON(t *testing.T) {
	h := newTestHelper(t)
	h.populate()

	out, err := h.run("plan", "-s", h.sourceDir, "-d", h.destDir,
		"--filter", "202301", "--suffix", "jpg,tif", "--strict", "-o", "json")
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	var doc output.PlanDocument
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	folder := filepath.Join(h.destDir, "202301__")
	want := []output.PlanRecord{
		{Source: filepath.Join(h.sourceDir, "202301__", "IMG_0001.TIF"), DestFolder: folder, DestName: "IMG_20230115_101500.tif"},
		{Source: filepath.Join(h.sourceDir, "202301__", "IMG_0002.TIF"), DestFolder: folder, DestName: "IMG_20230115_101500_2.tif"},
		{Source: filepath.Join(h.sourceDir, "202301__", "IMG_E0003.JPG"), DestFolder: folder, DestName: "IMG_E0003.JPG"},
	}
	if len(doc.Entries) != len(want) {
		t.Fatalf("entries = %+v", doc.Entries)
	}
	for i := range want {
		if doc.Entries[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, doc.Entries[i], want[i])
		}
	}

	if h.destExists("202301__") {
		t.Error("plan must not create destination folders")
	}
}

func TestPlanCommand_OutFile(t *testing.T) {
	h := newTestHelper(t)
	h.populate()
	outFile := filepath.Join(t.TempDir(), "plan.yaml")

	if _, err := h.run("plan", "-s", h.sourceDir, "-d", h.destDir, "-o", "yaml", "--out", outFile); err != nil {
		t.Fatalf("plan failed: %v", err)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("plan file missing: %v", err)
	}
	if !strings.Contains(string(data), "dest_name: IMG_0100.JPG") {
		t.Errorf("plan file does not list the unfiltered entry:\n%s", data)
	}
}

func TestCopyCommand(t *testing.T) {
	h := newTestHelper(t)
	h.populate()

	out, err := h.run("copy", "-s", h.sourceDir, "-d", h.destDir,
		"--filter", "202301", "--suffix", "jpg,tif", "--verify", "hash", "-p", "2")
	if err != nil {
		t.Fatalf("copy failed: %v\n%s", err, out)
	}

	for _, rel := range []string{
		"202301__/IMG_20230115_101500.tif",
		"202301__/IMG_20230115_101500_2.tif",
		"202301__/IMG_0003.JPG",
		"202301__/IMG_E0003.JPG",
	} {
		if !h.destExists(rel) {
			t.Errorf("expected %s in destination", rel)
		}
	}
	if h.destExists("202212__") || h.destExists("202301__/notes.txt") {
		t.Error("filtered folder or disallowed suffix was copied")
	}
	if !strings.Contains(out, "Status: success") {
		t.Errorf("summary missing:\n%s", out)
	}

	// A second run finds every destination in place
	out, err = h.run("copy", "-s", h.sourceDir, "-d", h.destDir,
		"--filter", "202301", "--suffix", "jpg,tif", "-o", "json")
	if err != nil {
		t.Fatalf("second copy failed: %v", err)
	}
	var report output.ReportDocument
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if report.Stats.FilesSkipped != 4 || report.Stats.FilesCopied != 0 {
		t.Errorf("second run stats = %+v", report.Stats)
	}
}

func TestCopyCommand_Move(t *testing.T) {
	h := newTestHelper(t)
	h.writeSource("a/clip.jpg", []byte("data"))

	if _, err := h.run("copy", "-s", h.sourceDir, "-d", h.destDir, "--mode", "move", "-q"); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !h.destExists("a/clip.jpg") {
		t.Error("moved file missing from destination")
	}
	if _, err := os.Stat(filepath.Join(h.sourceDir, "a", "clip.jpg")); !os.IsNotExist(err) {
		t.Error("source should be removed in move mode")
	}
}

func TestCopyCommand_NothingToDo(t *testing.T) {
	h := newTestHelper(t)

	out, err := h.run("copy", "-s", h.sourceDir, "-d", h.destDir)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !strings.Contains(out, "nothing to do") {
		t.Errorf("output = %q", out)
	}
}

func TestCopyCommand_DryRun(t *testing.T) {
	h := newTestHelper(t)
	h.populate()
	missing := filepath.Join(t.TempDir(), "not-yet")

	out, err := h.run("copy", "-s", h.sourceDir, "-d", missing, "--dry-run", "--keep-names", "--suffix", "tif")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !strings.Contains(out, "IMG_0001.TIF") {
		t.Errorf("dry run should keep source names:\n%s", out)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("dry run must not create the destination")
	}
}

func TestCopyCommand_Validation(t *testing.T) {
	h := newTestHelper(t)
	nested := filepath.Join(h.sourceDir, "backup")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Missing source", []string{"copy", "-s", filepath.Join(h.sourceDir, "nope"), "-d", h.destDir}, "does not exist"},
		{"Missing destination", []string{"copy", "-s", h.sourceDir, "-d", filepath.Join(h.destDir, "nope")}, "--create-dest"},
		{"Same paths", []string{"copy", "-s", h.sourceDir, "-d", h.sourceDir}, "cannot be the same"},
		{"Nested", []string{"copy", "-s", h.sourceDir, "-d", nested}, "nested"},
		{"Bad mode", []string{"copy", "-s", h.sourceDir, "-d", h.destDir, "--mode", "sync"}, "copy.mode"},
		{"Bad bandwidth", []string{"copy", "-s", h.sourceDir, "-d", h.destDir, "-b", "fast"}, "bandwidth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.run(tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestCopyCommand_PartialExitCode(t *testing.T) {
	h := newTestHelper(t)
	h.writeSource("a/ok.jpg", []byte("data"))
	h.writeSource("a/locked.jpg", []byte("data"))

	// A directory squatting on a destination file name makes that copy fail
	if err := os.MkdirAll(filepath.Join(h.destDir, "a", "locked.jpg", "child"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := h.run("copy", "-s", h.sourceDir, "-d", h.destDir, "--overwrite", "-q")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Status != models.StatusPartial || exitErr.Code != 1 {
		t.Errorf("exit = %+v", exitErr)
	}
}

// failingCloser accepts writes and fails on Close, like a file whose final
// flush hits a full disk
type failingCloser struct {
	bytes.Buffer
	closed bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("no space left on device")
}

func TestWritePlanFile_CloseError(t *testing.T) {
	plan := models.NewCopyPlan("plan-1", "/src", "/dst")
	w := &failingCloser{}

	err := writePlanFile(w, plan, "json")
	if err == nil || !strings.Contains(err.Error(), "no space left on device") {
		t.Fatalf("writePlanFile() error = %v, want the close error", err)
	}
	if !w.closed {
		t.Error("writer was not closed")
	}

	w = &failingCloser{}
	if err := writePlanFile(w, plan, "toml"); err == nil || !strings.Contains(err.Error(), "failed to write plan") {
		t.Errorf("writePlanFile() error = %v, want a write error", err)
	}
	if !w.closed {
		t.Error("writer was not closed after a failed write")
	}
}

func TestParseBandwidth(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", 0, false},
		{"0", 0, false},
		{"1024", 1024, false},
		{"512K", 512 << 10, false},
		{"10M", 10 << 20, false},
		{"10MB/s", 10 << 20, false},
		{"1.5G", 3 << 29, false},
		{"fast", 0, true},
		{"-1M", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseBandwidth(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBandwidth(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseBandwidth(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	h := newTestHelper(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := h.run("config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}

	if _, err := h.run("config", "init", "--config", path); err == nil {
		t.Error("second init without --force should fail")
	}

	out, err = h.run("config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "target_zone: Asia/Shanghai") {
		t.Errorf("config show output:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	h := newTestHelper(t)

	out, err := h.run("version", "--short")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) != Version {
		t.Errorf("version = %q", out)
	}
}
