package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func agentTable() *Table {
	return &Table{
		Headers: []string{"ID", "NAME", "MODEL"},
		Rows: [][]string{
			{"composer", "Composer", "llama3.1"},
			{"critic", "Critic", "qwen2.5"},
		},
		Data: []map[string]string{
			{"id": "composer", "name": "Composer", "model": "llama3.1"},
			{"id": "critic", "name": "Critic", "model": "qwen2.5"},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, agentTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "composer") || !strings.Contains(lines[1], "llama3.1") {
		t.Errorf("row line = %q", lines[1])
	}
}

func TestJSONFormatter_UsesUnderlyingData(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&buf, agentTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var decoded []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["id"] != "composer" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatCSV).FormatTo(&buf, agentTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	want := "ID,NAME,MODEL\ncomposer,Composer,llama3.1\ncritic,Critic,qwen2.5\n"
	if buf.String() != want {
		t.Errorf("csv output = %q, want %q", buf.String(), want)
	}
}

func TestNewFormatter_UnknownFormatFallsBackToText(t *testing.T) {
	if _, ok := NewFormatter("yaml").(*TextFormatter); !ok {
		t.Error("unknown format did not fall back to text")
	}
}
