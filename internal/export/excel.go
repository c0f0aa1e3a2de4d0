// Package export writes the curriculum catalog to an Excel workbook, one
// sheet per subject, for review by non-technical curriculum staff.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
)

var headers = []string{
	"Grade", "Chapter", "Topic Code", "Topic", "Difficulty",
	"Estimated Hours", "Learning Objectives", "Key Concepts", "Prerequisites",
}

// Workbook renders the catalog to w as an .xlsx workbook.
func Workbook(catalog *curriculum.Catalog, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, subject := range curriculum.Subjects() {
		rows := subjectRows(catalog, subject)
		if len(rows) == 0 {
			continue
		}

		sheet := string(subject)
		if first {
			// excelize starts every workbook with one default sheet.
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("naming sheet: %w", err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("adding sheet %s: %w", sheet, err)
			}
		}

		for col, h := range headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return fmt.Errorf("writing header: %w", err)
			}
		}
		for i, row := range rows {
			for col, v := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, i+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return fmt.Errorf("writing row: %w", err)
				}
			}
		}
	}

	if first {
		return fmt.Errorf("catalog is empty")
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func subjectRows(catalog *curriculum.Catalog, subject curriculum.Subject) [][]any {
	var rows [][]any
	for grade := curriculum.GradeMin; grade <= curriculum.GradeMax; grade++ {
		sc, ok := catalog.SubjectCurriculum(subject, grade)
		if !ok {
			continue
		}
		for _, ch := range sc.Chapters {
			for _, t := range ch.Topics {
				rows = append(rows, []any{
					grade,
					fmt.Sprintf("%d. %s", ch.Number, ch.Name),
					t.Code,
					t.Name,
					string(t.Difficulty),
					t.EstimatedHours,
					strings.Join(t.LearningObjectives, "; "),
					strings.Join(t.KeyConcepts, "; "),
					strings.Join(t.Prerequisites, "; "),
				})
			}
		}
	}
	return rows
}
