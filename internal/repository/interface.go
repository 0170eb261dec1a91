package repository

import "context"

// KeyValueStore is the string-keyed persistence facility beneath LocalStore.
// A missing key is reported with found == false, not an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}
