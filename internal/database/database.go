package database

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	db *gorm.DB
}

// Models

// ScanRecord is one completed scan, found or not. Kept for history and the
// /scans endpoint; the engine never reads these back.
type ScanRecord struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Symbol     string `gorm:"index"`
	Variant    string // "credit" or "itm"
	Trend      string
	Found      bool
	Reason     string
	SpreadType string
	Expiration string

	ShortStrike     decimal.Decimal `gorm:"type:decimal(12,4)"`
	BuyStrike       decimal.Decimal `gorm:"type:decimal(12,4)"`
	ShortContractID string
	BuyContractID   string
	NetCredit       decimal.Decimal `gorm:"type:decimal(12,4)"`
	MaxRisk         decimal.Decimal `gorm:"type:decimal(12,4)"`
	MaxProfit       decimal.Decimal `gorm:"type:decimal(12,4)"`
	ROIPercent      decimal.Decimal `gorm:"type:decimal(8,2)"`
	Breakeven       decimal.Decimal `gorm:"type:decimal(12,4)"`
	SafetyMarginPct decimal.Decimal `gorm:"type:decimal(8,2)"`
	QuoteCalls      int64

	CreatedAt time.Time
}

// ClaimedSpread is a pick a user has claimed for their own account.
type ClaimedSpread struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	UserID          string `gorm:"index"`
	Symbol          string `gorm:"index"`
	SpreadType      string
	Expiration      string
	ShortContractID string
	BuyContractID   string
	NetCredit       decimal.Decimal `gorm:"type:decimal(12,4)"`
	MaxRisk         decimal.Decimal `gorm:"type:decimal(12,4)"`
	Quantity        int
	Status          string // "open", "closed"
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New opens postgres when databaseURL is set, sqlite at sqlitePath otherwise.
func New(databaseURL, sqlitePath string) (*Database, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		if dir := filepath.Dir(sqlitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dialector = sqlite.Open(sqlitePath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&ScanRecord{}, &ClaimedSpread{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("💾 Database connected")
	return &Database{db: db}, nil
}

// SaveScan records a completed scan.
func (d *Database) SaveScan(rec *ScanRecord) error {
	return d.db.Create(rec).Error
}

// RecentScans returns the newest scans, most recent first.
func (d *Database) RecentScans(limit int) ([]ScanRecord, error) {
	var records []ScanRecord
	err := d.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// Claim stores a user-claimed spread.
func (d *Database) Claim(claim *ClaimedSpread) error {
	claim.Status = "open"
	return d.db.Create(claim).Error
}

// ClaimsForUser lists a user's claims, newest first.
func (d *Database) ClaimsForUser(userID string, limit int) ([]ClaimedSpread, error) {
	var claims []ClaimedSpread
	err := d.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&claims).Error
	return claims, err
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
