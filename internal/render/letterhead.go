package render

import (
	"fmt"
	"strings"
)

// Company is the invoicing business shown in the header, FROM block and
// payment details
type Company struct {
	Name          string
	Tagline       string
	Address       string
	City          string
	Postcode      string
	Phone         string
	Email         string
	UTR           string
	BankName      string
	AccountName   string
	AccountNumber string
	SortCode      string
}

// Client is the party billed
type Client struct {
	Name     string
	Address  string
	City     string
	Postcode string
}

// Letterhead holds the fixed details printed on every invoice
type Letterhead struct {
	Company Company
	Client  Client
}

// DefaultLetterhead returns placeholder details, meant to be overridden by configuration
func DefaultLetterhead() Letterhead {
	return Letterhead{
		Company: Company{
			Name:          "Your Company Name",
			Tagline:       "Logistics & Freight Services",
			Address:       "123 Business Street",
			City:          "London",
			Postcode:      "EC1A 1BB",
			Phone:         "07000000000",
			Email:         "contact@example.com",
			UTR:           "0000000000",
			BankName:      "Your Bank",
			AccountName:   "Your Name",
			AccountNumber: "00000000",
			SortCode:      "00-00-00",
		},
		Client: Client{
			Name:     "Client Company Ltd",
			Address:  "456 Client Road",
			City:     "Manchester",
			Postcode: "M1 1AA",
		},
	}
}

// AddressLine joins the address parts that are set
func (c Company) AddressLine() string {
	return joinNonEmpty(", ", c.Address, c.City, c.Postcode)
}

// ContactLine is "phone | email"
func (c Company) ContactLine() string {
	return joinNonEmpty(" | ", c.Phone, c.Email)
}

// UTRLine is the tax reference, empty when none is configured
func (c Company) UTRLine() string {
	if c.UTR == "" {
		return ""
	}
	return fmt.Sprintf("UTR# %s", c.UTR)
}

func (c Client) AddressLine() string {
	return joinNonEmpty(", ", c.Address, c.City, c.Postcode)
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
