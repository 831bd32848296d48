package dto

import (
	"presto/internal/domain/models"
)

// StoreResponse is the fixed wire shape of GET /store. The store is nested
// under "store" rather than wrapped in the status/data envelope the auth
// endpoints use; editor clients depend on this exact form.
type StoreResponse struct {
	Store models.Store `json:"store"`
}

// ReplaceStoreRequest is the PUT /store payload: the complete new store.
type ReplaceStoreRequest struct {
	Store models.Store `json:"store"`
}
