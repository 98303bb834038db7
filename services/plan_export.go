package services

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"schliessplan_app_go/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// PlanExport is the fully resolved view of a saved plan used by the XLSX, HTML
// and PDF exporters: snapshot deserialized, catalog item and feature names
// looked up, user-entered text sanitized.
type PlanExport struct {
	Name     string
	ItemName string
	Criteria *models.CriteriaSet
	Plan     *models.Plan
	Features map[string]string // feature key -> display name
}

// exportPolicy strips all markup from user-entered text before it reaches an
// export document
var exportPolicy = bluemonday.StrictPolicy()

// BuildPlanExport resolves a saved plan into an export view
func BuildPlanExport(db *gorm.DB, saved *models.SavedPlan) (*PlanExport, error) {
	criteria, plan, err := saved.Snapshot()
	if err != nil {
		return nil, err
	}

	export := &PlanExport{
		Name:     exportPolicy.Sanitize(saved.Name),
		Criteria: criteria,
		Plan:     plan,
		Features: make(map[string]string),
	}

	if saved.CatalogItemID != "" {
		var item models.CatalogItem
		if err := db.First(&item, "id = ?", saved.CatalogItemID).Error; err == nil {
			export.ItemName = item.Name
		}
	}

	var featureOptions []models.Option
	if err := db.Where("category = ?", models.CategoryFeatures).Find(&featureOptions).Error; err != nil {
		return nil, err
	}
	for _, opt := range featureOptions {
		export.Features[opt.Key] = opt.Name
	}

	for i := range plan.Rows {
		plan.Rows[i].DoorLabel = exportPolicy.Sanitize(plan.Rows[i].DoorLabel)
	}
	for i := range plan.Columns {
		plan.Columns[i].Name = exportPolicy.Sanitize(plan.Columns[i].Name)
	}

	return export, nil
}

// featureNames returns the display names of a row's enabled features, sorted
// for stable output
func (e *PlanExport) featureNames(flags models.FeatureFlags) []string {
	var names []string
	for key, enabled := range flags {
		if !enabled {
			continue
		}
		name, ok := e.Features[key]
		if !ok {
			name = key
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fixed columns preceding the key-group matrix in the XLSX export
var xlsxHeaders = []string{"Pos.", "Tür", "Zylindertyp", "System", "Technik", "Maß Außen", "Maß Innen", "Anzahl", "Funktionen"}

// ExportPlanXLSX renders the closing plan as a spreadsheet: one row per door,
// the key-group matrix as X marks in the trailing columns
func ExportPlanXLSX(export *PlanExport) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Schließplan"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", export.Name)
	if export.ItemName != "" {
		f.SetCellValue(sheet, "A2", fmt.Sprintf("Zylinder-System: %s", export.ItemName))
	}

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	f.SetCellStyle(sheet, "A1", "A1", titleStyle)

	const headerRow = 4
	for i, header := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(sheet, cell, header)
	}
	for i, col := range export.Plan.Columns {
		cell, _ := excelize.CoordinatesToCellName(len(xlsxHeaders)+i+1, headerRow)
		f.SetCellValue(sheet, cell, col.Name)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(xlsxHeaders)+len(export.Plan.Columns), headerRow)
	f.SetCellStyle(sheet, "A4", lastHeaderCell, headerStyle)

	for i, row := range export.Plan.Rows {
		rowNum := headerRow + 1 + i
		values := []interface{}{
			row.Position,
			row.DoorLabel,
			row.Variant,
			export.ItemName,
			row.TechMode,
			row.DimOutside,
			row.DimInside,
			row.Quantity,
			strings.Join(export.featureNames(row.Features), ", "),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, rowNum)
			f.SetCellValue(sheet, cell, value)
		}
		for j, assigned := range row.Assignments {
			if !assigned {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(len(xlsxHeaders)+j+1, rowNum)
			f.SetCellValue(sheet, cell, "X")
		}
	}

	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", "E", 18)
	f.SetColWidth(sheet, "I", "I", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

var planHTMLTemplate = template.Must(template.New("plan").Parse(`<!DOCTYPE html>
<html lang="de">
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 24px; }
  h1 { font-size: 20px; margin-bottom: 4px; }
  .subtitle { color: #555; margin-bottom: 16px; }
  table { border-collapse: collapse; width: 100%; font-size: 12px; }
  th, td { border: 1px solid #999; padding: 6px 8px; text-align: left; }
  th { background: #efefef; }
  td.matrix { text-align: center; width: 40px; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
{{if .ItemName}}<p class="subtitle">Zylinder-System: {{.ItemName}}</p>{{end}}
<table>
  <thead>
    <tr>
      <th>Pos.</th>
      <th>Tür</th>
      <th>Zylindertyp</th>
      <th>Technik</th>
      <th>Maß Außen</th>
      <th>Maß Innen</th>
      <th>Anzahl</th>
      <th>Funktionen</th>
      {{range .Columns}}<th>{{.Name}}</th>{{end}}
    </tr>
  </thead>
  <tbody>
    {{range .Rows}}
    <tr>
      <td>{{.Position}}</td>
      <td>{{.DoorLabel}}</td>
      <td>{{.Variant}}</td>
      <td>{{.TechMode}}</td>
      <td>{{.DimOutside}}</td>
      <td>{{.DimInside}}</td>
      <td>{{.Quantity}}</td>
      <td>{{.FeatureList}}</td>
      {{range .Assignments}}<td class="matrix">{{if .}}&#10003;{{end}}</td>{{end}}
    </tr>
    {{end}}
  </tbody>
</table>
</body>
</html>
`))

type planHTMLRow struct {
	Position    int
	DoorLabel   string
	Variant     string
	TechMode    string
	DimOutside  string
	DimInside   string
	Quantity    int
	FeatureList string
	Assignments []bool
}

type planHTMLData struct {
	Name     string
	ItemName string
	Columns  []models.PlanColumn
	Rows     []planHTMLRow
}

// RenderPlanHTML renders the closing plan as a standalone HTML document,
// suitable for direct download and as PDF input
func RenderPlanHTML(export *PlanExport) (string, error) {
	data := planHTMLData{
		Name:     export.Name,
		ItemName: export.ItemName,
		Columns:  export.Plan.Columns,
	}
	for _, row := range export.Plan.Rows {
		data.Rows = append(data.Rows, planHTMLRow{
			Position:    row.Position,
			DoorLabel:   row.DoorLabel,
			Variant:     row.Variant,
			TechMode:    row.TechMode,
			DimOutside:  row.DimOutside,
			DimInside:   row.DimInside,
			Quantity:    row.Quantity,
			FeatureList: strings.Join(export.featureNames(row.Features), ", "),
			Assignments: row.Assignments,
		})
	}

	var buf bytes.Buffer
	if err := planHTMLTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render plan HTML: %w", err)
	}
	return buf.String(), nil
}
