package models

import "time"

// File represents a persisted file record. The id equals the storage
// subsystem's upload identifier; blob_id is the content-addressable pointer.
// Maps to: tusky_files table.
type File struct {
	ID        string    `db:"id" json:"id"`
	VaultID   string    `db:"vault_id" json:"vault_id"`
	UploadID  string    `db:"upload_id" json:"upload_id"`
	BlobID    string    `db:"blob_id" json:"blob_id"`
	Name      string    `db:"name" json:"name"`
	MimeType  *string   `db:"mime_type" json:"mime_type,omitempty"`
	Size      *int64    `db:"size" json:"size,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NFTRef is the optional NFT attached to a file in listings
type NFTRef struct {
	ID    string  `json:"id"`
	Name  *string `json:"name,omitempty"`
	Price *string `json:"price,omitempty"`
}

// FileWithNFT is a file listing entry joined with its NFT, when one exists
type FileWithNFT struct {
	File
	NFT *NFTRef `json:"nft,omitempty"`
}
