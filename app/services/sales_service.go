package services

import (
	"errors"
	"fmt"
	"time"

	"KasirApp/app/models"
	"KasirApp/app/receipt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SalesService stores synced transactions and serves nota data back to
// the rendering layer.
type SalesService struct {
	db     *gorm.DB
	logger *LoggerService
}

// NewSalesService creates a new sales service
func NewSalesService(db *gorm.DB, logger *LoggerService) *SalesService {
	return &SalesService{db: db, logger: logger}
}

// SyncTransaksiRequest is one sale uploaded by an offline client. The
// client generates the transaction id, so re-uploading after a dropped
// connection must not duplicate the sale.
type SyncTransaksiRequest struct {
	ClientTxID  string    `json:"client_tx_id"`
	Tanggal     string    `json:"tanggal"`
	MetodeBayar string    `json:"metode_bayar"`
	Bayar       float64   `json:"bayar"`
	Kembalian   float64   `json:"kembalian"`
	NoHP        string    `json:"no_hp"`
	TokoID      uint      `json:"toko_id"`
	Items       []SyncItem `json:"items"`
}

// SyncItem is one line of an uploaded sale.
type SyncItem struct {
	Barcode   string  `json:"barcode"`
	Nama      string  `json:"nama"`
	Qty       int     `json:"qty"`
	HargaJual float64 `json:"harga_jual"`
	HargaBeli float64 `json:"harga_beli"`
	Potongan  float64 `json:"potongan"`
}

// SyncResult reports what happened to one uploaded transaction.
type SyncResult struct {
	ClientTxID string `json:"client_tx_id"`
	Status     string `json:"status"` // "created", "duplicate", "error"
	Error      string `json:"error,omitempty"`
}

// SyncTransaksi stores an uploaded sale. A transaction id that already
// exists is reported as a duplicate and left untouched.
func (s *SalesService) SyncTransaksi(req SyncTransaksiRequest) SyncResult {
	if req.ClientTxID == "" {
		return SyncResult{Status: "error", Error: "client_tx_id is required"}
	}

	var existing models.Penjualan
	err := s.db.First(&existing, "client_tx_id = ?", req.ClientTxID).Error
	if err == nil {
		return SyncResult{ClientTxID: req.ClientTxID, Status: "duplicate"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return SyncResult{ClientTxID: req.ClientTxID, Status: "error", Error: err.Error()}
	}

	penjualan := models.Penjualan{
		ClientTxID:  req.ClientTxID,
		Tanggal:     time.Now().UTC(),
		MetodeBayar: req.MetodeBayar,
		Bayar:       req.Bayar,
		Kembalian:   req.Kembalian,
		TokoID:      req.TokoID,
	}

	// Client timestamps are kept separately from the server timestamp so
	// the nota can show when the sale actually happened.
	if req.Tanggal != "" {
		if ts, perr := parseClientTime(req.Tanggal); perr == nil {
			penjualan.TanggalClient = &ts
		} else if s.logger != nil {
			s.logger.LogWarning("Unparseable client timestamp", req.Tanggal)
		}
	}

	if req.NoHP != "" {
		var pembeli models.Pembeli
		if err := s.db.First(&pembeli, "no_hp = ?", req.NoHP).Error; err == nil {
			penjualan.PembeliID = &pembeli.ID
		}
	}

	for _, item := range req.Items {
		penjualan.Items = append(penjualan.Items, models.PenjualanDetail{
			Barcode:   item.Barcode,
			Nama:      item.Nama,
			Qty:       item.Qty,
			HargaJual: item.HargaJual,
			HargaBeli: item.HargaBeli,
			Potongan:  item.Potongan,
		})
	}

	if err := s.db.Create(&penjualan).Error; err != nil {
		return SyncResult{ClientTxID: req.ClientTxID, Status: "error", Error: err.Error()}
	}

	return SyncResult{ClientTxID: req.ClientTxID, Status: "created"}
}

// SyncPembeli upserts a buyer keyed on the phone number.
func (s *SalesService) SyncPembeli(nama, noHP, alamat string) (*models.Pembeli, error) {
	if noHP == "" {
		return nil, fmt.Errorf("no_hp is required")
	}

	pembeli := models.Pembeli{Nama: nama, NoHP: noHP, Alamat: alamat}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "no_hp"}},
		DoUpdates: clause.AssignmentColumns([]string{"nama", "alamat", "updated_at"}),
	}).Create(&pembeli).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pembeli: %w", err)
	}

	// Re-read so the caller gets the surviving row's id on update.
	if err := s.db.First(&pembeli, "no_hp = ?", noHP).Error; err != nil {
		return nil, err
	}
	return &pembeli, nil
}

// GetDetail loads one sale with its lines, buyer and store, shaped for
// the nota renderers.
func (s *SalesService) GetDetail(clientTxID string) (receipt.Header, []receipt.Item, receipt.Toko, error) {
	var penjualan models.Penjualan
	err := s.db.Preload("Items").Preload("Pembeli").Preload("Toko").
		First(&penjualan, "client_tx_id = ?", clientTxID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return receipt.Header{}, nil, receipt.Toko{}, fmt.Errorf("transaksi %s not found", clientTxID)
		}
		return receipt.Header{}, nil, receipt.Toko{}, err
	}

	header := receipt.Header{
		ClientTxID:    penjualan.ClientTxID,
		TanggalServer: penjualan.Tanggal,
		Bayar:         penjualan.Bayar,
		Kembalian:     penjualan.Kembalian,
		MetodeBayar:   penjualan.MetodeBayar,
	}
	if penjualan.TanggalClient != nil {
		header.Tanggal = *penjualan.TanggalClient
	}

	items := make([]receipt.Item, 0, len(penjualan.Items))
	for _, d := range penjualan.Items {
		items = append(items, receipt.Item{
			Nama:      d.Nama,
			Qty:       d.Qty,
			HargaJual: d.HargaJual,
			Potongan:  d.Potongan,
		})
	}

	var toko receipt.Toko
	if penjualan.Toko != nil {
		toko = receipt.Toko{Nama: penjualan.Toko.Nama, Alamat: penjualan.Toko.Alamat}
	}

	return header, items, toko, nil
}

// RecapRow is one day of aggregated sales.
type RecapRow struct {
	Tanggal   string  `json:"tanggal"`
	Transaksi int     `json:"transaksi"`
	Omzet     float64 `json:"omzet"`
	Laba      float64 `json:"laba"`
}

// Recap aggregates sales per day over an inclusive date range. Laba is
// margin minus per-line discounts.
func (s *SalesService) Recap(from, to time.Time) ([]RecapRow, error) {
	var rows []RecapRow
	err := s.db.Model(&models.PenjualanDetail{}).
		Select(`DATE(penjualans.tanggal) AS tanggal,
			COUNT(DISTINCT penjualans.id) AS transaksi,
			SUM(penjualan_details.qty * penjualan_details.harga_jual - penjualan_details.potongan) AS omzet,
			SUM(penjualan_details.qty * (penjualan_details.harga_jual - penjualan_details.harga_beli) - penjualan_details.potongan) AS laba`).
		Joins("JOIN penjualans ON penjualans.id = penjualan_details.penjualan_id").
		Where("penjualans.tanggal >= ? AND penjualans.tanggal < ?", from, to.AddDate(0, 0, 1)).
		Where("penjualans.deleted_at IS NULL").
		Group("DATE(penjualans.tanggal)").
		Order("tanggal").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to build recap: %w", err)
	}
	return rows, nil
}

// ListPenjualan returns sales in an inclusive date range, newest first.
func (s *SalesService) ListPenjualan(from, to time.Time) ([]models.Penjualan, error) {
	var sales []models.Penjualan
	err := s.db.Preload("Items").Preload("Pembeli").
		Where("tanggal >= ? AND tanggal < ?", from, to.AddDate(0, 0, 1)).
		Order("tanggal DESC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list penjualan: %w", err)
	}
	return sales, nil
}

// parseClientTime accepts the timestamp formats browsers actually send.
func parseClientTime(value string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range formats {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
