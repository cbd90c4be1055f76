package audit

import "context"

type AuditRepository interface {
	Insert(ctx context.Context, entry Entry) error
}
