package catalog

import (
	"fmt"
	"sync/atomic"

	"github.com/fleetdesk/fleetdesk/pkg/apperr"
)

// Registry holds an immutable in-memory snapshot of the issue-status and
// action-type lookup rows, keyed by code. Callers that resolve codes on every
// mutation (the issue transition path) read the snapshot instead of the
// lookup tables. Reload swaps the snapshot after admin changes; nothing else
// mutates it.
type Registry struct {
	store    *Store
	snapshot atomic.Pointer[registrySnapshot]
}

type registrySnapshot struct {
	issueStatusByCode map[string]IssueStatus
	issueStatusByID   map[string]IssueStatus
	actionTypeByCode  map[string]ActionType
}

// LoadRegistry builds a Registry from the current lookup rows.
func LoadRegistry(store *Store) (*Registry, error) {
	r := &Registry{store: store}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the snapshot with the current lookup table contents.
func (r *Registry) Reload() error {
	statuses, err := r.store.ListIssueStatuses()
	if err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}
	types, err := r.store.ListActionTypes()
	if err != nil {
		return fmt.Errorf("reload registry: %w", err)
	}
	snap := &registrySnapshot{
		issueStatusByCode: make(map[string]IssueStatus, len(statuses)),
		issueStatusByID:   make(map[string]IssueStatus, len(statuses)),
		actionTypeByCode:  make(map[string]ActionType, len(types)),
	}
	for _, st := range statuses {
		snap.issueStatusByCode[st.Code] = st
		snap.issueStatusByID[st.ID] = st
	}
	for _, at := range types {
		snap.actionTypeByCode[at.Code] = at
	}
	r.snapshot.Store(snap)
	return nil
}

// IssueStatusByCode resolves an issue status by code. A missing canonical
// code is a catalog precondition failure, so the error is internal rather
// than a validation error.
func (r *Registry) IssueStatusByCode(code string) (IssueStatus, error) {
	snap := r.snapshot.Load()
	st, ok := snap.issueStatusByCode[code]
	if !ok {
		return IssueStatus{}, apperr.Internalf("no issue status with code %q in catalog", code)
	}
	return st, nil
}

// IssueStatusByID resolves an issue status by surrogate id.
func (r *Registry) IssueStatusByID(id string) (IssueStatus, bool) {
	snap := r.snapshot.Load()
	st, ok := snap.issueStatusByID[id]
	return st, ok
}

// ActionTypeByCode resolves an action type by code. Unknown codes from a
// caller are that caller's mistake, so lookup failure surfaces as ok=false
// and the call site decides between validation and internal.
func (r *Registry) ActionTypeByCode(code string) (ActionType, bool) {
	snap := r.snapshot.Load()
	at, ok := snap.actionTypeByCode[code]
	return at, ok
}
