package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/pomo/internal/store"
	"github.com/sadopc/pomo/internal/timer"
)

func sampleData() ([]timer.Session, map[string]*store.Task) {
	end := time.Now().UTC().Truncate(time.Second)

	sessions := []timer.Session{
		{
			ID:        "s1",
			Mode:      timer.Work,
			Minutes:   60,
			TaskID:    "t1",
			StartedAt: end.Add(-1 * time.Hour),
			EndedAt:   end,
		},
		{
			ID:        "s2",
			Mode:      timer.ShortBreak,
			Minutes:   5,
			StartedAt: end,
			EndedAt:   end.Add(5 * time.Minute),
		},
		{
			ID:        "s3",
			Mode:      timer.Work,
			Minutes:   25,
			TaskID:    "deleted",
			StartedAt: end.Add(5 * time.Minute),
			EndedAt:   end.Add(30 * time.Minute),
		},
	}

	tasks := map[string]*store.Task{
		"t1": {ID: "t1", Title: "Write report", Estimated: 2},
		"t2": {ID: "t2", Title: "Review PR", Estimated: 1},
	}

	return sessions, tasks
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	err := ToCSV(sessions, tasks, path)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Mode", "Task", "Start", "End", "Minutes", "Duration"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[0] != "s1" || row[1] != "work" {
		t.Fatalf("unexpected row %v", row)
	}
	if row[2] != "Write report" {
		t.Fatalf("Task = %q, want Write report", row[2])
	}
	if row[5] != "60" {
		t.Fatalf("Minutes = %q, want 60", row[5])
	}
	if row[6] != "01:00:00" {
		t.Fatalf("Duration = %q, want 01:00:00", row[6])
	}

	if records[2][2] != "" {
		t.Fatalf("break session should have no task, got %q", records[2][2])
	}
	if records[3][2] != "Unknown" {
		t.Fatalf("expected 'Unknown' for deleted task, got %q", records[3][2])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	err := ToCSV(nil, nil, path)
	if err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	now := time.Now()
	sessions := []timer.Session{
		{ID: "s1", Mode: timer.Work, Minutes: 25, TaskID: "t1", StartedAt: now, EndedAt: now},
	}
	tasks := map[string]*store.Task{
		"t1": {ID: "t1", Title: `Task "Special", with commas`},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(sessions, tasks, path); err != nil {
		t.Fatal(err)
	}

	records := readCSV(t, path)
	if records[1][2] != `Task "Special", with commas` {
		t.Fatalf("task title mangled: %q", records[1][2])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	err := ToJSON(sessions, tasks, path)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(result.Sessions))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	s := result.Sessions[0]
	if s.ID != "s1" || s.Mode != "work" || s.TaskID != "t1" {
		t.Fatalf("unexpected session %+v", s)
	}
	if s.Task != "Write report" {
		t.Fatalf("Task = %q, want Write report", s.Task)
	}
	if s.DurationSec != 3600 || s.Duration != "01:00:00" {
		t.Fatalf("unexpected duration %d / %q", s.DurationSec, s.Duration)
	}

	if result.Sessions[1].Task != "" || result.Sessions[1].TaskID != "" {
		t.Fatal("break session should have no task")
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	err := ToJSON(nil, nil, path)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Sessions != nil {
		t.Fatal("sessions should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	sessions, tasks := sampleData()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sessions, tasks); err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	json.Unmarshal(buf.Bytes(), &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, s := range result.Sessions {
		if _, err := time.Parse(time.RFC3339, s.StartTime); err != nil {
			t.Fatalf("start_time is not valid RFC3339: %q", s.StartTime)
		}
		if _, err := time.Parse(time.RFC3339, s.EndTime); err != nil {
			t.Fatalf("end_time is not valid RFC3339: %q", s.EndTime)
		}
	}
}

// ============================================================
// Format dispatch
// ============================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", CSV, false},
		{"JSON", JSON, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteDispatch(t *testing.T) {
	sessions, tasks := sampleData()

	var csvBuf, jsonBuf bytes.Buffer
	if err := Write(CSV, &csvBuf, sessions, tasks); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(csvBuf.String(), "ID,Mode,Task") {
		t.Fatalf("expected CSV header, got %q", csvBuf.String())
	}
	if err := Write(JSON, &jsonBuf, sessions, tasks); err != nil {
		t.Fatal(err)
	}
	if !json.Valid(jsonBuf.Bytes()) {
		t.Fatal("expected valid JSON")
	}
}

func TestToFile(t *testing.T) {
	sessions, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "out.json")
	if err := ToFile(JSON, sessions, tasks, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !json.Valid(data) {
		t.Fatal("expected a JSON file")
	}
}

func TestTaskIndex(t *testing.T) {
	idx := TaskIndex([]store.Task{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
	if len(idx) != 2 || idx["b"].Title != "B" {
		t.Fatalf("unexpected index %v", idx)
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
