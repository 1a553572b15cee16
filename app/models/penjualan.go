package models

import (
	"time"

	"gorm.io/gorm"
)

// Penjualan is one completed sale transaction, keyed by the client-generated
// transaction id so offline clients can sync the same sale twice without
// creating duplicates.
type Penjualan struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	ClientTxID    string             `gorm:"uniqueIndex;not null" json:"client_tx_id"`
	Tanggal       time.Time          `json:"tanggal"`                  // server-side timestamp
	TanggalClient *time.Time         `json:"tanggal_client,omitempty"` // client-reported timestamp
	PembeliID     *uint              `json:"pembeli_id,omitempty"`
	Pembeli       *Pembeli           `gorm:"foreignKey:PembeliID" json:"pembeli,omitempty"`
	MetodeBayar   string             `json:"metode_bayar"`
	Bayar         float64            `json:"bayar"`
	Kembalian     float64            `json:"kembalian"`
	TokoID        uint               `json:"toko_id"`
	Toko          *Toko              `gorm:"foreignKey:TokoID" json:"toko,omitempty"`
	Items         []PenjualanDetail  `gorm:"foreignKey:PenjualanID" json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"deleted_at,omitempty"`
}

// PenjualanDetail is one sold line item. Harga amounts are rupiah without
// minor units; Potongan is a per-line discount and defaults to zero.
type PenjualanDetail struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	PenjualanID uint       `gorm:"index" json:"penjualan_id"`
	Penjualan   *Penjualan `gorm:"foreignKey:PenjualanID" json:"-"`
	Barcode     string     `json:"barcode"`
	Nama        string     `gorm:"not null" json:"nama"`
	Qty         int        `json:"qty"`
	HargaJual   float64    `json:"harga_jual"`
	HargaBeli   float64    `json:"harga_beli"`
	Potongan    float64    `json:"potongan"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Pembeli is a buyer. The phone number doubles as the upsert key for
// offline sync and as the WhatsApp delivery address for the nota.
type Pembeli struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nama      string    `gorm:"not null" json:"nama"`
	NoHP      string    `gorm:"uniqueIndex" json:"no_hp"`
	Alamat    string    `json:"alamat"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
