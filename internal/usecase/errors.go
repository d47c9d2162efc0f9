package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mtaha2509/logging-platform/internal/repository"
)

var (
	// ErrInvalidArgument indicates the caller supplied a malformed or out-of-range input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrPermissionDenied indicates the actor lacks the privilege for the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthenticated indicates the request carries no resolvable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInconsistentState indicates stored data references an entity that no longer exists.
	ErrInconsistentState = errors.New("inconsistent state")
	// ErrAlertConfigExists indicates another alert already carries the same configuration.
	ErrAlertConfigExists = errors.New("alert with identical configuration already exists")
)

// MissingEntitiesError reports which referenced ids could not be found, split by
// entity kind. It unwraps to repository-level not-found semantics so transport
// layers map it to the usual status.
type MissingEntitiesError struct {
	MissingUserIDs        []int64
	MissingApplicationIDs []int64
}

func (e *MissingEntitiesError) Error() string {
	var parts []string
	if len(e.MissingUserIDs) > 0 {
		parts = append(parts, fmt.Sprintf("users %s", formatIDs(e.MissingUserIDs)))
	}
	if len(e.MissingApplicationIDs) > 0 {
		parts = append(parts, fmt.Sprintf("applications %s", formatIDs(e.MissingApplicationIDs)))
	}
	return "not found: " + strings.Join(parts, ", ")
}

func (e *MissingEntitiesError) Unwrap() error {
	return repository.ErrNotFound
}

func formatIDs(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := make([]string, len(sorted))
	for i, id := range sorted {
		out[i] = fmt.Sprintf("%d", id)
	}
	return "[" + strings.Join(out, " ") + "]"
}
