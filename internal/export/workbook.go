// Package export writes a month's report to an xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/christopherklint97/ponto/internal/present"
	"github.com/christopherklint97/ponto/internal/report"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary    = "Resumo"
	SheetDaily      = "Diario"
	SheetAllocation = "Alocacao"
)

var (
	summaryHeaders    = []any{"Indicador", "Valor", "Exibição", "Variação", "Situação"}
	dailyHeaders      = []any{"ID", "Colaborador", "Dia", "Horas", "Horas extras"}
	allocationHeaders = []any{"Atividade", "Percentual"}
)

// Workbook builds the three-sheet workbook for snap. The caller closes it.
func Workbook(snap *report.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetAllocation} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	if err := writeSummary(f, snap); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeDaily(f, snap); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeAllocation(f, snap); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteWorkbook saves snap to path.
func WriteWorkbook(path string, snap *report.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Write streams snap as xlsx to w.
func Write(w io.Writer, snap *report.Snapshot) error {
	f, err := Workbook(snap)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func writeSummary(f *excelize.File, snap *report.Snapshot) error {
	if err := f.SetCellValue(SheetSummary, "A1", "Período"); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetSummary, "B1", snap.Period.String()); err != nil {
		return err
	}
	if err := setRow(f, SheetSummary, 3, summaryHeaders); err != nil {
		return err
	}

	for i, c := range snap.Cards {
		var value any = c.Value
		delta := present.DeltaLabel(c.Delta, c.Unit)
		if c.State == report.StateFailed {
			value, delta = present.Placeholder, present.Placeholder
		}
		row := []any{c.Title, value, present.Value(c), delta, c.State.String()}
		if err := setRow(f, SheetSummary, i+4, row); err != nil {
			return err
		}
	}
	return nil
}

func writeDaily(f *excelize.File, snap *report.Snapshot) error {
	if err := setRow(f, SheetDaily, 1, dailyHeaders); err != nil {
		return err
	}
	for i, d := range snap.Daily {
		day := d.DateKey
		if !d.Dated {
			day = "sem data"
		}
		row := []any{d.EmployeeID, d.Name, day, d.Hours, d.Overtime}
		if err := setRow(f, SheetDaily, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeAllocation(f *excelize.File, snap *report.Snapshot) error {
	if err := setRow(f, SheetAllocation, 1, allocationHeaders); err != nil {
		return err
	}
	for i, b := range snap.Allocation {
		if err := setRow(f, SheetAllocation, i+2, []any{b.Label, b.Value}); err != nil {
			return err
		}
	}
	return nil
}
