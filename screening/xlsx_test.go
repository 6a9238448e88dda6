package screening

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/openpaper/abstractor/store"
)

func TestWriteSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	exs := []store.Extraction{
		{
			Path:      "/papers/one.pdf",
			Filename:  "one.pdf",
			Method:    "alignment_based",
			Found:     true,
			Abstract:  "We study gophers.",
			WordCount: 3,
			UpdatedAt: "2026-08-01 10:00:00",
		},
		{
			Path:     "/papers/two.pdf",
			Filename: "two.pdf",
			Method:   "gap_based",
			Error:    "decoding PDF: unreadable",
		},
	}

	if err := WriteSheet(path, exs); err != nil {
		t.Fatalf("WriteSheet: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (header + 2 results)", len(rows))
	}
	if rows[0][0] != "Path" || rows[0][5] != "Abstract" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][0] != "/papers/one.pdf" {
		t.Errorf("row 1 path: got %q, want %q", rows[1][0], "/papers/one.pdf")
	}
	if rows[1][5] != "We study gophers." {
		t.Errorf("row 1 abstract: got %q, want the extracted text", rows[1][5])
	}
	if rows[2][2] != "gap_based" {
		t.Errorf("row 2 method: got %q, want %q", rows[2][2], "gap_based")
	}
	if rows[2][6] != "decoding PDF: unreadable" {
		t.Errorf("row 2 error: got %q, want the failure message", rows[2][6])
	}
}

func TestWriteSheetEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	if err := WriteSheet(path, nil); err != nil {
		t.Fatalf("WriteSheet: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("reading rows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want header only", len(rows))
	}
}

func TestReadPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screening.xlsx")

	f := excelize.NewFile()
	cells := map[string]string{
		"A1": "Paper",            // header, skipped
		"B1": "Include?",
		"A2": "/inbox/one.pdf",
		"B2": "yes",
		"A3": " /inbox/two.PDF ", // padded, uppercase extension
		"A4": "",                 // blank, skipped
		"A5": "notes.txt",        // not a PDF, skipped
	}
	for cell, v := range cells {
		if err := f.SetCellValue("Sheet1", cell, v); err != nil {
			t.Fatalf("building fixture: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving fixture: %v", err)
	}
	f.Close()

	paths, err := ReadPaths(path)
	if err != nil {
		t.Fatalf("ReadPaths: %v", err)
	}
	want := []string{"/inbox/one.pdf", "/inbox/two.PDF"}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths %v, want %v", len(paths), paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d: got %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestReadPathsNoPDFs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no_pdfs.xlsx")

	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "just a title"); err != nil {
		t.Fatalf("building fixture: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("saving fixture: %v", err)
	}
	f.Close()

	if _, err := ReadPaths(path); err == nil {
		t.Error("got nil error, want a no-paths failure")
	}
}

func TestReadPathsMissingFile(t *testing.T) {
	if _, err := ReadPaths(filepath.Join(t.TempDir(), "nope.xlsx")); err == nil {
		t.Error("got nil error, want an open failure")
	}
}
