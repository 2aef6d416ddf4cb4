package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
)

// ShippingAddress is a value object holding the delivery details captured
// on an order. It is immutable once created.
type ShippingAddress struct {
	name    string
	email   string
	phone   string
	address string
	note    string
}

// NewShippingAddress creates a validated ShippingAddress.
// Name, phone and address are required; email and note are optional.
func NewShippingAddress(name, email, phone, address, note string) (ShippingAddress, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	address = strings.TrimSpace(address)
	note = strings.TrimSpace(note)

	if name == "" {
		return ShippingAddress{}, fmt.Errorf("recipient name cannot be empty")
	}
	if len(name) > 200 {
		return ShippingAddress{}, fmt.Errorf("recipient name cannot exceed 200 characters")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return ShippingAddress{}, fmt.Errorf("invalid email format")
		}
	}
	if phone == "" {
		return ShippingAddress{}, fmt.Errorf("phone cannot be empty")
	}
	if len(phone) > 50 {
		return ShippingAddress{}, fmt.Errorf("phone cannot exceed 50 characters")
	}
	if address == "" {
		return ShippingAddress{}, fmt.Errorf("address cannot be empty")
	}
	if len(address) > 500 {
		return ShippingAddress{}, fmt.Errorf("address cannot exceed 500 characters")
	}
	if len(note) > 1000 {
		return ShippingAddress{}, fmt.Errorf("note cannot exceed 1000 characters")
	}

	return ShippingAddress{
		name:    name,
		email:   email,
		phone:   phone,
		address: address,
		note:    note,
	}, nil
}

// Name returns the recipient name
func (a ShippingAddress) Name() string { return a.name }

// Email returns the contact email
func (a ShippingAddress) Email() string { return a.email }

// Phone returns the contact phone
func (a ShippingAddress) Phone() string { return a.phone }

// Address returns the street address
func (a ShippingAddress) Address() string { return a.address }

// Note returns the delivery note
func (a ShippingAddress) Note() string { return a.note }

// IsEmpty reports whether no field is set
func (a ShippingAddress) IsEmpty() bool {
	return a.name == "" && a.phone == "" && a.address == ""
}

// Equals compares two addresses field by field
func (a ShippingAddress) Equals(other ShippingAddress) bool {
	return a == other
}

// String returns a single-line representation
func (a ShippingAddress) String() string {
	if a.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("%s, %s, %s", a.name, a.phone, a.address)
}

type shippingAddressJSON struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Note    string `json:"note,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a ShippingAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(shippingAddressJSON{
		Name:    a.name,
		Email:   a.email,
		Phone:   a.phone,
		Address: a.address,
		Note:    a.note,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Values are validated through
// NewShippingAddress; an all-empty document yields the zero address.
func (a *ShippingAddress) UnmarshalJSON(data []byte) error {
	var v shippingAddressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Name == "" && v.Phone == "" && v.Address == "" {
		*a = ShippingAddress{}
		return nil
	}
	addr, err := NewShippingAddress(v.Name, v.Email, v.Phone, v.Address, v.Note)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer, storing the address as a JSON document
func (a ShippingAddress) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *ShippingAddress) Scan(value any) error {
	if value == nil {
		*a = ShippingAddress{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ShippingAddress", value)
	}
	return a.UnmarshalJSON(data)
}
