package historic

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Historico"

var exportHeaders = []string{
	"Niño", "Tipo", "Inicio", "Fin", "Registrado por", "Cerrado por", "Comentario", "Detalle", "ID",
}

// ExportXLSX escribe la vista actual (ventana revelada, en el orden activo).
func (e *Engine) ExportXLSX(w io.Writer) error {
	vm := e.View()

	e.mu.Lock()
	names, loc := e.names, e.loc
	e.mu.Unlock()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), exportSheet); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return fmt.Errorf("export: header: %w", err)
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, style)
	}

	for r, n := range vm.Items {
		row := []any{
			childName(names, n.ChildID),
			string(n.Kind),
			formatTime(&n.StartTime, loc),
			formatTime(n.EndTime, loc),
			agentName(names, n.StartAgentID),
			agentName(names, n.CompletedAgentID),
			n.Comment,
			formatDetail(n.KindSpecific),
			n.ID,
		}
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("export: row %d: %w", r+2, err)
			}
		}
	}
	_ = f.SetColWidth(exportSheet, "A", "I", 20)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

func formatTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

// formatDetail: "clave=valor" ordenado por clave.
func formatDetail(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := m[k]
		if list, ok := v.([]string); ok {
			v = strings.Join(list, ",")
		}
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, "; ")
}
