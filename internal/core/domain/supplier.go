package domain

import "strings"

type Supplier struct {
	ID      int64
	Name    string
	Contact string // phone or email, free-form
	Address string
}

func (s Supplier) Draft() SupplierDraft {
	return SupplierDraft{Name: s.Name, Contact: s.Contact, Address: s.Address}
}

type SupplierDraft struct {
	Name    string
	Contact string
	Address string
}

func (d SupplierDraft) Validate() error {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return &ValidationError{Field: "name", Reason: "is required"}
	case strings.TrimSpace(d.Contact) == "":
		return &ValidationError{Field: "contact", Reason: "is required"}
	case strings.TrimSpace(d.Address) == "":
		return &ValidationError{Field: "address", Reason: "is required"}
	}
	return nil
}
