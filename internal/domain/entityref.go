package domain

import "strings"

// RefKind classifies how an entity identifier was parsed
type RefKind string

const (
	RefKindOpaque    RefKind = "opaque"    // No structure the resolver relies on
	RefKindContainer RefKind = "container" // {kind}_{server}_{local}
	RefKindServer    RefKind = "server"    // {prefix}_{name}
)

const idSeparator = "_"

// EntityRef is an entity identifier parsed into its components
type EntityRef struct {
	Kind   RefKind
	Prefix string // first component, e.g. "container" or "server"
	Server string // owning server name (containers) or own name (servers)
	Local  string // container-local name, may contain separators
}

// ParseEntityRef parses an identifier according to the entity type.
//
// Container ids are split into at most three parts; the server name is the
// second component and the local name keeps any remaining separators.
// Server ids are split on the first separator only, so server names with
// embedded underscores survive intact.
func ParseEntityRef(id string, entityType EntityType) EntityRef {
	switch {
	case entityType == EntityTypeContainer:
		parts := strings.SplitN(id, idSeparator, 3)
		if len(parts) < 2 || parts[1] == "" {
			return EntityRef{Kind: RefKindOpaque}
		}
		ref := EntityRef{Kind: RefKindContainer, Prefix: parts[0], Server: parts[1]}
		if len(parts) == 3 {
			ref.Local = parts[2]
		}
		return ref

	case entityType.IsServer():
		parts := strings.SplitN(id, idSeparator, 2)
		if len(parts) < 2 || parts[1] == "" {
			return EntityRef{Kind: RefKindOpaque}
		}
		return EntityRef{Kind: RefKindServer, Prefix: parts[0], Server: parts[1]}
	}

	return EntityRef{Kind: RefKindOpaque}
}

// ServerName returns the server name embedded in the identifier
func (r EntityRef) ServerName() (string, bool) {
	if r.Kind == RefKindOpaque {
		return "", false
	}
	return r.Server, true
}
