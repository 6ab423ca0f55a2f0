package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	// AppName is written into every exported backup
	AppName = "Gestão Pro PDV"

	backupFilePrefix = "gestao_pro_backup_"
)

var (
	ErrInvalidBackup = errors.New("invalid backup")
)

// Snapshot is the whole persisted state of the application
type Snapshot struct {
	Products []Product     `json:"products"`
	Sales    []Sale        `json:"sales"`
	Logs     []ActivityLog `json:"logs"`
}

// Backup is the exported file: a snapshot plus informational fields that are
// ignored on import
type Backup struct {
	Snapshot
	ExportDate time.Time `json:"exportDate"`
	AppName    string    `json:"appName"`
}

// NewBackup wraps a snapshot for export
func NewBackup(snapshot Snapshot, exportedAt time.Time) Backup {
	return Backup{
		Snapshot:   snapshot.Normalized(),
		ExportDate: exportedAt.UTC(),
		AppName:    AppName,
	}
}

// BackupFileName returns the download name for a backup taken at t
func BackupFileName(t time.Time) string {
	return backupFilePrefix + t.Format("2006-01-02") + ".json"
}

// ImportedBackup is the validated content of a backup file
type ImportedBackup struct {
	Products []Product
	Sales    []Sale
	// Logs is nil when the file carried no logs key
	Logs []ActivityLog
}

type backupDocument struct {
	Products *[]Product     `json:"products"`
	Sales    *[]Sale        `json:"sales"`
	Logs     *[]ActivityLog `json:"logs"`
}

// ParseBackup decodes a backup file. The document must carry products and
// sales arrays, stock may not be negative and every sale must move at least
// one unit. Anything else is rejected with ErrInvalidBackup.
func ParseBackup(data []byte) (*ImportedBackup, error) {
	var doc backupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	if doc.Products == nil || doc.Sales == nil {
		return nil, fmt.Errorf("%w: products and sales are required", ErrInvalidBackup)
	}

	for _, p := range *doc.Products {
		if p.Stock < 0 {
			return nil, fmt.Errorf("%w: product %q has negative stock %d", ErrInvalidBackup, p.ID, p.Stock)
		}
	}
	for _, sale := range *doc.Sales {
		if sale.Quantity < 1 {
			return nil, fmt.Errorf("%w: sale %q has quantity %d", ErrInvalidBackup, sale.ID, sale.Quantity)
		}
	}

	imported := &ImportedBackup{
		Products: *doc.Products,
		Sales:    *doc.Sales,
	}
	if doc.Logs != nil {
		imported.Logs = *doc.Logs
	}

	return imported, nil
}

// Normalized replaces nil collections with empty ones so they serialize as []
func (s Snapshot) Normalized() Snapshot {
	if s.Products == nil {
		s.Products = []Product{}
	}
	if s.Sales == nil {
		s.Sales = []Sale{}
	}
	if s.Logs == nil {
		s.Logs = []ActivityLog{}
	}
	return s
}
