package store

import "context"

// RunAsUser wraps ctx with the acting user and calls fn inside the provided TxRunner
func RunAsUser(ctx context.Context, tx TxRunner, userID string, fn func(ctx context.Context, q RowQuerier) error) error {
	ctx = WithUser(ctx, userID)
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}

// Run calls fn inside the provided TxRunner without annotating the context
func Run(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q RowQuerier) error) error {
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}
