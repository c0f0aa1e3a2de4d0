package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
	"github.com/shiksha-ai/shiksha-server/internal/export"
)

func TestWorkbook(t *testing.T) {
	catalog, err := curriculum.Default()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "curriculum.xlsx")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := export.Workbook(catalog, out); err != nil {
		t.Fatalf("Workbook() error = %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 4 {
		t.Errorf("sheets = %v, want one per subject", sheets)
	}

	rows, err := f.GetRows("Mathematics")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) < 2 {
		t.Fatal("mathematics sheet has no data rows")
	}
	if rows[0][0] != "Grade" || rows[0][3] != "Topic" {
		t.Errorf("header row = %v", rows[0])
	}

	// All math rows should carry M-prefixed codes.
	for _, row := range rows[1:] {
		if len(row) < 3 || row[2] == "" || row[2][0] != 'M' {
			t.Errorf("unexpected code in row %v", row)
			break
		}
	}
}
