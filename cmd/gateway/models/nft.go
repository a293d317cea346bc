package models

import "time"

// NFT represents a persisted NFT record. The id is the on-chain object id,
// known only after a successful mint. Price is stored in smallest units.
// Maps to: nfts table.
type NFT struct {
	ID          string    `db:"id" json:"id"`
	FileID      string    `db:"file_id" json:"file_id"`
	Name        *string   `db:"name" json:"name,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	Price       *string   `db:"price" json:"price,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
