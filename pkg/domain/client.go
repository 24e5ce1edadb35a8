package domain

import "strings"

// ClientRecord holds the display fields of a client as returned by the
// ClientRepository. The repository owns the full record; the context keeps a
// copy of these fields only.
type ClientRecord struct {
	Name    string `json:"name" yaml:"name"`
	Company string `json:"company,omitempty" yaml:"company,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
}

// Label returns the line shown when listing client candidates.
func (c ClientRecord) Label() string {
	if c.Company == "" {
		return c.Name
	}
	return c.Name + " (" + c.Company + ")"
}

// Empty reports whether the record carries no usable field at all.
func (c ClientRecord) Empty() bool {
	return strings.TrimSpace(c.Name+c.Company+c.Address+c.Phone+c.Email) == ""
}
