// Package valueobject contains immutable value objects shared across the domain.
package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// OwnerType discriminates company-owned stock from customer-consigned stock
type OwnerType string

const (
	OwnerTypeCompany  OwnerType = "COMPANY"
	OwnerTypeCustomer OwnerType = "CUSTOMER"
)

// Owner is a value object identifying who owns a quantity of stock.
// It is a tagged variant: either the company, or a specific customer
// (consigned stock). The customer ID is only present for the CUSTOMER
// variant, so the COMPANY/CUSTOMER exclusivity holds by construction.
// It is immutable - all operations return new Owner instances.
type Owner struct {
	ownerType  OwnerType
	customerID uuid.UUID
}

// CompanyOwner returns the company-owned variant
func CompanyOwner() Owner {
	return Owner{ownerType: OwnerTypeCompany}
}

// CustomerOwner returns the customer-consigned variant for the given customer
func CustomerOwner(customerID uuid.UUID) (Owner, error) {
	if customerID == uuid.Nil {
		return Owner{}, fmt.Errorf("customer owner requires a customer ID")
	}
	return Owner{ownerType: OwnerTypeCustomer, customerID: customerID}, nil
}

// MustCustomerOwner creates a customer owner and panics on error
func MustCustomerOwner(customerID uuid.UUID) Owner {
	o, err := CustomerOwner(customerID)
	if err != nil {
		panic(err)
	}
	return o
}

// ParseOwner parses the string form produced by String:
// "COMPANY" or "CUSTOMER:<uuid>"
func ParseOwner(s string) (Owner, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == string(OwnerTypeCompany) {
		return CompanyOwner(), nil
	}
	rest, ok := strings.CutPrefix(s, string(OwnerTypeCustomer)+":")
	if !ok {
		return Owner{}, fmt.Errorf("invalid owner %q", s)
	}
	id, err := uuid.Parse(rest)
	if err != nil {
		return Owner{}, fmt.Errorf("invalid owner customer ID: %w", err)
	}
	return CustomerOwner(id)
}

// Type returns the owner type
func (o Owner) Type() OwnerType {
	return o.ownerType
}

// IsCompany returns true for company-owned stock
func (o Owner) IsCompany() bool {
	return o.ownerType == OwnerTypeCompany
}

// IsCustomer returns true for customer-consigned stock
func (o Owner) IsCustomer() bool {
	return o.ownerType == OwnerTypeCustomer
}

// CustomerID returns the owning customer ID and whether one is present
func (o Owner) CustomerID() (uuid.UUID, bool) {
	if o.ownerType != OwnerTypeCustomer {
		return uuid.Nil, false
	}
	return o.customerID, true
}

// Equal returns true if both owners identify the same party
func (o Owner) Equal(other Owner) bool {
	return o.ownerType == other.ownerType && o.customerID == other.customerID
}

// String returns the canonical string form used for storage and keys
func (o Owner) String() string {
	if o.ownerType == OwnerTypeCustomer {
		return string(OwnerTypeCustomer) + ":" + o.customerID.String()
	}
	return string(OwnerTypeCompany)
}

// Value implements driver.Valuer for database storage.
// The owner is stored as a single column so it can participate in
// uniqueness constraints alongside material/order/lot.
func (o Owner) Value() (driver.Value, error) {
	return o.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (o *Owner) Scan(value any) error {
	if value == nil {
		*o = CompanyOwner()
		return nil
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Owner", value)
	}
	parsed, err := ParseOwner(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (o Owner) MarshalJSON() ([]byte, error) {
	var customerID *uuid.UUID
	if id, ok := o.CustomerID(); ok {
		customerID = &id
	}
	return json.Marshal(struct {
		Type       OwnerType  `json:"owner_type"`
		CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	}{Type: o.ownerType, CustomerID: customerID})
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Owner) UnmarshalJSON(data []byte) error {
	var v struct {
		Type       OwnerType  `json:"owner_type"`
		CustomerID *uuid.UUID `json:"customer_id"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to parse owner JSON: %w", err)
	}
	switch v.Type {
	case OwnerTypeCompany, "":
		*o = CompanyOwner()
		return nil
	case OwnerTypeCustomer:
		if v.CustomerID == nil {
			return fmt.Errorf("customer owner requires customer_id")
		}
		parsed, err := CustomerOwner(*v.CustomerID)
		if err != nil {
			return err
		}
		*o = parsed
		return nil
	}
	return fmt.Errorf("invalid owner type %q", v.Type)
}
