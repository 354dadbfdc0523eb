package input

import "gleipnir/internal/common"

// Source yields inbound order events one at a time. ok is false at end of
// stream; a source never returns events after that.
type Source interface {
	Next() (common.Inbound, bool)
}
