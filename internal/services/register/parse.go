package register

import (
	"encoding/xml"
	"strings"

	"roster/internal/registry"
	"roster/internal/services"
)

// containerPaths enumerates the known export layouts in priority order. Each
// path names the root element, any intermediate containers, and the entry
// element. The first path that yields at least one entry wins.
var containerPaths = [][]string{
	{"root", "list-of-producers", "producer"},
	{"producers", "producer"},
	{"register-excerpt", "Producer"},
	{"Producers", "Producer"},
}

// Field aliases seen across export revisions, in priority order. The first
// alias with non-empty text supplies the value.
var (
	registrationAliases = []string{"RegistrationNumber", "registration-number", "registrationNumber", "RegNo"}
	companyAliases      = []string{"CompanyName", "Name", "company-name", "OrganisationName"}
	vatAliases          = []string{"VatNumber", "vat-number", "VatId"}
	taxAliases          = []string{"TaxNumber", "tax-number", "TaxId"}
	addressAliases      = []string{"Address", "address", "Street"}
	cityAliases         = []string{"City", "city", "Town"}
	postalAliases       = []string{"PostalCode", "postal-code", "Zip", "ZipCode"}
)

// Parse decodes a raw export document into producer records. Documents with
// an unrecognized layout decode to an empty slice; only tokenizer failures
// report an error. Entries without a registration number are dropped.
func Parse(raw []byte) ([]registry.Record, error) {
	var root xmlNode
	if err := xml.Unmarshal(raw, &root); err != nil {
		return nil, services.Wrap(services.ErrMalformed, "register", "parse", "xml decode failed", err)
	}

	entries := findEntries(root)
	records := make([]registry.Record, 0, len(entries))
	for _, entry := range entries {
		if rec, ok := extractRecord(entry); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// xmlNode is a schema-free element tree. Export layouts drift between
// revisions, so the document is decoded wholesale and interpreted afterwards.
type xmlNode struct {
	name     string
	text     string
	children []xmlNode
}

func (n *xmlNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	n.name = start.Name.Local
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			var child xmlNode
			if err := child.UnmarshalXML(d, t); err != nil {
				return err
			}
			n.children = append(n.children, child)
		case xml.CharData:
			n.text += string(t)
		case xml.EndElement:
			return nil
		}
	}
}

func findEntries(root xmlNode) []xmlNode {
	for _, path := range containerPaths {
		if root.name != path[0] {
			continue
		}
		nodes := []xmlNode{root}
		for _, name := range path[1:] {
			var next []xmlNode
			for _, node := range nodes {
				for _, child := range node.children {
					if child.name == name {
						next = append(next, child)
					}
				}
			}
			nodes = next
		}
		if len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

func extractRecord(node xmlNode) (registry.Record, bool) {
	rec := registry.Record{
		RegistrationNumber: firstText(node, registrationAliases),
		CompanyName:        firstText(node, companyAliases),
		VATNumber:          firstText(node, vatAliases),
		TaxNumber:          firstText(node, taxAliases),
		Address:            firstText(node, addressAliases),
		City:               firstText(node, cityAliases),
		PostalCode:         firstText(node, postalAliases),
	}
	if rec.RegistrationNumber == "" {
		return registry.Record{}, false
	}
	return rec, true
}

func firstText(node xmlNode, names []string) string {
	for _, name := range names {
		for _, child := range node.children {
			if child.name != name {
				continue
			}
			if text := strings.TrimSpace(child.text); text != "" {
				return text
			}
		}
	}
	return ""
}
