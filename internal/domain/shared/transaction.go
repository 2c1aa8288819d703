package shared

import "context"

// TransactionManager runs a function inside a single storage
// transaction. Mutations that touch more than one aggregate (create
// bill and mark room billed, move tenant out and free the room) go
// through it so a crash cannot leave occupancy and billing disagreeing.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
