package clients

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// WalletKey is the context key for the wallet address (for X-Wallet-Address header)
	WalletKey contextKey = "wallet-address"

	// UserIDKey is the context key for the authenticated user id
	UserIDKey contextKey = "user-id"
)

// WithWallet adds a wallet address to the context.
// It is automatically extracted and added as X-Wallet-Address header in HTTP requests.
func WithWallet(ctx context.Context, address string) context.Context {
	return context.WithValue(ctx, WalletKey, address)
}

// GetWallet retrieves the wallet address from context
func GetWallet(ctx context.Context) (string, bool) {
	address, ok := ctx.Value(WalletKey).(string)
	return address, ok && address != ""
}

// WithUserID adds a user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}
