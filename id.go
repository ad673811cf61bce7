package wayfarer

import "github.com/xraph/wayfarer/id"

// ID is the primary identifier type for Wayfarer entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
