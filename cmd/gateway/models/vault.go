package models

import "time"

// Vault represents a persisted vault record. The id is assigned by the
// storage subsystem; this row only mirrors it.
// Maps to: tusky_vaults table.
type Vault struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	WalletAddress string    `db:"wallet_address" json:"wallet_address"`
	Encrypted     bool      `db:"encrypted" json:"encrypted"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
