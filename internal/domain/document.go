package domain

import "strings"

// EntityType represents the type of an entity document
type EntityType string

const (
	EntityTypeDNSRecord      EntityType = "dns_record"
	EntityTypeProxyHost      EntityType = "proxy_host"
	EntityTypeContainer      EntityType = "container"
	EntityTypeService        EntityType = "service"
	EntityTypePhysicalServer EntityType = "physical_server"
	EntityTypeVirtualServer  EntityType = "virtual_server"
)

// IsServer reports whether documents of this type describe a machine.
// Collectors emit several server variants (physical_server, virtual_server,
// proxmox_server, ...), all of which share the "server" fragment.
func (t EntityType) IsServer() bool {
	return strings.Contains(string(t), "server")
}

// Document is an entity produced by the collection pipeline. It is
// read-only for this module; Fields returns the document exactly as it was
// loaded so it can be written back unchanged.
type Document struct {
	ID       string
	Type     EntityType
	Ref      EntityRef
	Metadata map[string]any
	Details  map[string]any

	fields map[string]any
}

// NewDocument creates a document with the given metadata section
func NewDocument(id string, entityType EntityType, metadata map[string]any) Document {
	fields := map[string]any{
		"id":   id,
		"type": string(entityType),
	}
	if metadata != nil {
		fields["metadata"] = metadata
	}
	return DocumentFromFields(fields)
}

// DocumentFromFields builds a document from its decoded form. Missing or
// mistyped id/type fields yield empty values rather than an error; callers
// skip documents with an empty id.
func DocumentFromFields(fields map[string]any) Document {
	doc := Document{fields: fields}
	doc.ID, _ = asString(fields["id"])
	if t, ok := asString(fields["type"]); ok {
		doc.Type = EntityType(t)
	}
	doc.Metadata, _ = asMap(fields["metadata"])
	doc.Details, _ = asMap(fields["details"])
	doc.Ref = ParseEntityRef(doc.ID, doc.Type)
	return doc
}

// WithDetails returns a copy of the document carrying a details section
func (d Document) WithDetails(details map[string]any) Document {
	fields := cloneMap(d.fields)
	fields["details"] = details
	return DocumentFromFields(fields)
}

// Fields returns the document as loaded
func (d Document) Fields() map[string]any {
	if d.fields == nil {
		return map[string]any{"id": d.ID, "type": string(d.Type)}
	}
	return d.fields
}

// Lookup finds a value by key, searching metadata, then details, then the
// top level of the document. Empty values are treated as unset so a blank
// metadata entry does not shadow a populated details entry.
func (d Document) Lookup(key string) (any, bool) {
	for _, section := range []map[string]any{d.Metadata, d.Details, d.fields} {
		if section == nil {
			continue
		}
		if v, ok := section[key]; ok && !isEmpty(v) {
			return v, true
		}
	}
	return nil, false
}

// LookupString gets a value as a string
func (d Document) LookupString(key string) string {
	v, ok := d.Lookup(key)
	if !ok {
		return ""
	}
	s, _ := asString(v)
	return s
}

// LookupStrings gets a list value as strings, skipping non-string entries
func (d Document) LookupStrings(key string) []string {
	v, ok := d.Lookup(key)
	if !ok {
		return nil
	}
	list, ok := asList(v)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := asString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// LookupPort gets a value as a port number
func (d Document) LookupPort(key string) (int, bool) {
	v, ok := d.Lookup(key)
	if !ok {
		return 0, false
	}
	return AsPort(v)
}

// PortBinding is one published port of a container
type PortBinding struct {
	HostIP        string
	HostPort      int
	ContainerPort int
	Protocol      string
}

// PortBindings returns the container's published ports. Entries without a
// usable host port are dropped.
func (d Document) PortBindings() []PortBinding {
	v, ok := d.Lookup("ports")
	if !ok {
		return nil
	}
	list, ok := asList(v)
	if !ok {
		return nil
	}

	bindings := make([]PortBinding, 0, len(list))
	for _, item := range list {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		hostPort, ok := AsPort(m["host_port"])
		if !ok {
			continue
		}
		b := PortBinding{HostPort: hostPort}
		b.HostIP, _ = asString(m["host_ip"])
		b.Protocol, _ = asString(m["protocol"])
		b.ContainerPort, _ = AsPort(m["container_port"])
		bindings = append(bindings, b)
	}
	return bindings
}
