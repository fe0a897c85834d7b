package inference

import "infragraph/internal/domain"

// Catalog indexes the documents of one run. Documents are deduplicated by
// id with the first occurrence winning; later copies are never merged in.
type Catalog struct {
	DNSRecords []domain.Document
	ProxyHosts []domain.Document
	Containers []domain.Document
	Servers    []domain.Document

	// Duplicates counts documents dropped because their id was seen before
	Duplicates int
	// Anonymous counts documents dropped for lacking an id
	Anonymous int

	byID          map[string]domain.Document
	serversByName map[string][]domain.Document
}

// NewCatalog builds a catalog from documents in store order
func NewCatalog(docs []domain.Document) *Catalog {
	c := &Catalog{
		byID:          make(map[string]domain.Document, len(docs)),
		serversByName: make(map[string][]domain.Document),
	}

	for _, doc := range docs {
		if doc.ID == "" {
			c.Anonymous++
			continue
		}
		if _, seen := c.byID[doc.ID]; seen {
			c.Duplicates++
			continue
		}
		c.byID[doc.ID] = doc

		switch {
		case doc.Type == domain.EntityTypeDNSRecord:
			c.DNSRecords = append(c.DNSRecords, doc)
		case doc.Type == domain.EntityTypeProxyHost:
			c.ProxyHosts = append(c.ProxyHosts, doc)
		case doc.Type == domain.EntityTypeContainer:
			c.Containers = append(c.Containers, doc)
		case doc.Type.IsServer():
			c.Servers = append(c.Servers, doc)
			if name, ok := doc.Ref.ServerName(); ok {
				c.serversByName[name] = append(c.serversByName[name], doc)
			}
		}
	}

	return c
}

// Document returns the retained document with the given id
func (c *Catalog) Document(id string) (domain.Document, bool) {
	doc, ok := c.byID[id]
	return doc, ok
}

// Len returns the number of retained documents
func (c *Catalog) Len() int {
	return len(c.byID)
}

// ServersNamed returns server documents whose id embeds name
func (c *Catalog) ServersNamed(name string) []domain.Document {
	return c.serversByName[name]
}
