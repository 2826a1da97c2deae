package usecase

import (
	"fmt"

	"github.com/Logitar/Identity-sub002/core/domain"
)

// UniqueNameConflictError aborts a manager save when another aggregate already
// holds the same (tenant, unique name) tuple. It is raised before any write.
type UniqueNameConflictError struct {
	Tenant        domain.TenantID
	UniqueName    domain.UniqueName
	AttemptedID   string
	ConflictingID string
}

func (e *UniqueNameConflictError) Error() string {
	scope := "global realm"
	if e.Tenant != "" {
		scope = fmt.Sprintf("tenant %q", string(e.Tenant))
	}
	return fmt.Sprintf("unique name %q is already used by %s in %s (attempted by %s)",
		string(e.UniqueName), e.ConflictingID, scope, e.AttemptedID)
}
