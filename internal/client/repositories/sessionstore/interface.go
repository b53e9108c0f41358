// Package sessionstore persists the client session between process
// restarts: the access token, the serialized user snapshot and the
// transient password-reset tokens. Values are stored as rows in a small
// local sqlite database so they survive reloads the same way the web
// client's cookie/local-storage pair does.
package sessionstore

import "context"

// Well-known keys. The services layer owns their semantics.
const (
	KeyAccessToken = "access_token"
	KeyUser        = "user"
	KeyVerifyToken = "verify_token"
	KeyResetToken  = "reset_token"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
