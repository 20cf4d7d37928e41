package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

func render(t *testing.T, f *TableFormatter, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	return buf.String()
}

func TestTableSlice(t *testing.T) {
	data := []member{
		{ID: "1", FirstName: "Ana", Code: "AB12CD34", CreatedAt: "2026-01-02", Secret: "x"},
		{ID: "2", FirstName: "Bo", Code: "ZZ99YY88", Tags: []string{"vip", "pt"}},
	}

	out := render(t, &TableFormatter{}, data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if fields := strings.Fields(lines[0]); !reflect.DeepEqual(fields, []string{"ID", "FIRST_NAME", "UNIQUE_ID", "TAGS"}) {
		t.Errorf("headers = %v", fields)
	}
	if strings.Contains(out, "CREATED_AT") || strings.Contains(out, "SECRET") {
		t.Errorf("hidden columns shown:\n%s", out)
	}
	if !strings.Contains(lines[2], "vip, pt") {
		t.Errorf("string slice not joined: %q", lines[2])
	}
	if !strings.Contains(lines[1], "-") {
		t.Errorf("empty cell not rendered as '-': %q", lines[1])
	}

	wide := render(t, &TableFormatter{Wide: true}, data)
	if !strings.Contains(wide, "CREATED_AT") || !strings.Contains(wide, "2026-01-02") {
		t.Errorf("wide output missing wide column:\n%s", wide)
	}
}

func TestTableStruct(t *testing.T) {
	type scanner struct {
		Source string  `json:"source"`
		FPS    float64 `json:"fps"`
	}
	type cfg struct {
		Server  string        `json:"server"`
		Timeout time.Duration `json:"timeout"`
		Scanner scanner       `json:"scanner"`
	}

	out := render(t, &TableFormatter{}, &cfg{
		Server:  "https://gym.example/api",
		Timeout: 30 * time.Second,
		Scanner: scanner{Source: "v4l2", FPS: 2.5},
	})
	for _, want := range []string{"FIELD", "timeout", "30s", "scanner.source", "v4l2", "scanner.fps", "2.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableMapSorted(t *testing.T) {
	out := render(t, &TableFormatter{}, map[string]any{"total": 12, "active": 9, "revenue": 1250.5})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 || !strings.HasPrefix(lines[1], "active") || !strings.HasPrefix(lines[3], "total") {
		t.Errorf("map rows not sorted:\n%s", out)
	}
	if !strings.Contains(out, "1250.50") {
		t.Errorf("float not formatted:\n%s", out)
	}
}

func TestTableDirect(t *testing.T) {
	table := NewTable("CODE", "RESULT")
	table.AddRow("AB12CD34", "ok")

	out := render(t, &TableFormatter{NoHeaders: true}, table)
	if strings.Contains(out, "CODE") || !strings.Contains(out, "AB12CD34") {
		t.Errorf("output = %q", out)
	}
}

func TestTableFallbackToJSON(t *testing.T) {
	out := render(t, &TableFormatter{}, "just a string")
	if strings.TrimSpace(out) != `"just a string"` {
		t.Errorf("output = %q", out)
	}
}

func TestFormatValue(t *testing.T) {
	n := 3
	var nilPtr *int
	tests := []struct {
		in   any
		want string
	}{
		{"", "-"},
		{"x", "x"},
		{42, "42"},
		{uint8(7), "7"},
		{19.0, "19"},
		{19.5, "19.50"},
		{true, "true"},
		{&n, "3"},
		{nilPtr, "-"},
		{[]int{1, 2}, "[2 items]"},
		{map[string]int{}, "-"},
		{90 * time.Second, "1m30s"},
		{time.Time{}, "-"},
		{time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC), "2026-10-19 09:30"},
	}
	for _, tt := range tests {
		if got := formatValue(reflect.ValueOf(tt.in)); got != tt.want {
			t.Errorf("formatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"FirstName": "first_name",
		"ID":        "i_d",
		"fps":       "fps",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
