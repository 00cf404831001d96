package entity

import "time"

// Blob referencia a un archivo almacenado (disco = driver de almacenamiento).
type Blob struct {
	ID        string
	Disk      string // local | gcs
	Path      string
	Filename  string
	Mime      string
	Size      int64
	Hash      string // sha256 hex
	CreatedAt time.Time
}

// Contract adjunta un documento PDF (Blob) a una transacción.
type Contract struct {
	ID            string
	TransactionID string
	BlobID        string
	Blob          *Blob // poblado en lecturas
	CreatedAt     time.Time
}
