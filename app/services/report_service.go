package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReportService exports sales data as xlsx workbooks for the store
// owner's bookkeeping.
type ReportService struct {
	sales  *SalesService
	logger *LoggerService
}

// NewReportService creates a new report service
func NewReportService(sales *SalesService, logger *LoggerService) *ReportService {
	return &ReportService{sales: sales, logger: logger}
}

// ExportPenjualan writes every sale in the range to a workbook, one row
// per line item.
func (s *ReportService) ExportPenjualan(from, to time.Time) ([]byte, error) {
	sales, err := s.sales.ListPenjualan(from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Penjualan"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Tanggal", "No Nota", "Pembeli", "Barang", "Qty", "Harga", "Potongan", "Subtotal", "Metode"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, sale := range sales {
		pembeli := ""
		if sale.Pembeli != nil {
			pembeli = sale.Pembeli.Nama
		}
		for _, item := range sale.Items {
			subtotal := float64(item.Qty)*item.HargaJual - item.Potongan
			values := []interface{}{
				sale.Tanggal.Format("2006-01-02 15:04"),
				sale.ClientTxID,
				pembeli,
				item.Nama,
				item.Qty,
				item.HargaJual,
				item.Potongan,
				subtotal,
				sale.MetodeBayar,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}

	f.SetColWidth(sheet, "A", "A", 18)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "C", "D", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportRecap writes the per-day recap to a workbook.
func (s *ReportService) ExportRecap(from, to time.Time) ([]byte, error) {
	rows, err := s.sales.Recap(from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Rekap"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Tanggal", "Transaksi", "Omzet", "Laba"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	var totalOmzet, totalLaba float64
	var totalTx int
	for i, r := range rows {
		values := []interface{}{r.Tanggal, r.Transaksi, r.Omzet, r.Laba}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
		totalTx += r.Transaksi
		totalOmzet += r.Omzet
		totalLaba += r.Laba
	}

	totalRow := len(rows) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "TOTAL")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), totalTx)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", totalRow), totalOmzet)
	f.SetCellValue(sheet, fmt.Sprintf("D%d", totalRow), totalLaba)

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "D", 12)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
