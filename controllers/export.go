package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"finreport/models"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

// categoryPath renders an operation's chain root first, e.g. "Food / Groceries".
func categoryPath(chain []models.CategoryView) string {
	names := make([]string, len(chain))
	for i, c := range chain {
		names[len(chain)-1-i] = c.Name
	}
	return strings.Join(names, " / ")
}

func reportRows(report models.Report) []models.ReportRow {
	rows := make([]models.ReportRow, 0, len(report.Operations))
	for _, op := range report.Operations {
		rows = append(rows, models.ReportRow{
			Date:     op.DateTime.UTC().Format(time.RFC3339),
			Category: categoryPath(op.Category),
			Amount:   op.Amount.StringFixed(2),
		})
	}
	return rows
}

func exportFileName(ext string) string {
	return fmt.Sprintf("report_operations_%s.%s", time.Now().UTC().Format("20060102_150405"), ext)
}

func handleCSVReport(c *gin.Context, report models.Report) {
	if len(report.Operations) == 0 {
		sendError(c, http.StatusNotFound, "operations-not-found")
		return
	}

	data, err := gocsv.MarshalBytes(reportRows(report))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Disposition", "attachment;filename=\""+exportFileName("csv")+"\"")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func handleExcelReport(c *gin.Context, report models.Report) {
	if len(report.Operations) == 0 {
		sendError(c, http.StatusNotFound, "operations-not-found")
		return
	}

	f := excelize.NewFile()

	sheet := "Operations"
	f.NewSheet(sheet)
	// delete default sheet
	f.DeleteSheet("Sheet1")

	err := f.SetColWidth(sheet, "A", "C", 40)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	headerStyle, err := f.NewStyle(s1)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	dataStyle, err := f.NewStyle(s2)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	streamWriter, err := f.NewStreamWriter(sheet)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err = streamWriter.SetRow("A1", []interface{}{
		excelize.Cell{StyleID: headerStyle, Value: "Date"},
		excelize.Cell{StyleID: headerStyle, Value: "Category"},
		excelize.Cell{StyleID: headerStyle, Value: "Amount"}}); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	for n, op := range report.Operations {
		row := make([]interface{}, 3)
		row[0] = excelize.Cell{StyleID: dataStyle, Value: op.DateTime.UTC().Format("2006-01-02 15:04:05")}
		row[1] = excelize.Cell{StyleID: dataStyle, Value: categoryPath(op.Category)}
		row[2] = excelize.Cell{StyleID: dataStyle, Value: humanize.CommafWithDigits(op.Amount.InexactFloat64(), 2)}

		cell, _ := excelize.CoordinatesToCellName(1, n+2)
		if err = streamWriter.SetRow(cell, row); err != nil {
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	cell, _ := excelize.CoordinatesToCellName(1, len(report.Operations)+2)
	if err = streamWriter.SetRow(cell, []interface{}{
		excelize.Cell{StyleID: headerStyle, Value: "Consumption"},
		excelize.Cell{StyleID: headerStyle, Value: fmt.Sprintf("page %d", report.Page)},
		excelize.Cell{StyleID: headerStyle, Value: humanize.CommafWithDigits(report.ConsumptionSum.InexactFloat64(), 2)}}); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err := streamWriter.Flush(); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment;filename=\""+exportFileName("xlsx")+"\"")

	if _, err := f.WriteTo(c.Writer); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}
}
