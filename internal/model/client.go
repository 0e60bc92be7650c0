package model

import (
	"fmt"

	"github.com/google/uuid"
)

type ClientSource string

const (
	ClientSourceDirect         ClientSource = "Direct"
	ClientSourceInsurance      ClientSource = "Insurance"
	ClientSourceCorporateFleet ClientSource = "Corporate Fleet"
)

func ParseClientSource(raw string) (ClientSource, error) {
	switch ClientSource(raw) {
	case ClientSourceDirect, ClientSourceInsurance, ClientSourceCorporateFleet:
		return ClientSource(raw), nil
	default:
		return "", fmt.Errorf("unknown client source %q", raw)
	}
}

type AccountType string

const (
	AccountTypeIndividual AccountType = "Individual"
	AccountTypeB2B        AccountType = "B2B"
	AccountTypePartner    AccountType = "Partner"
)

func ParseAccountType(raw string) (AccountType, error) {
	switch AccountType(raw) {
	case AccountTypeIndividual, AccountTypeB2B, AccountTypePartner:
		return AccountType(raw), nil
	default:
		return "", fmt.Errorf("unknown account type %q", raw)
	}
}

type Client struct {
	ID          uuid.UUID
	Name        string
	Source      ClientSource
	AccountType AccountType
	InsurerName *string
}

func (c Client) IsInsurance() bool {
	return c.Source == ClientSourceInsurance
}

// SplitInput carries raw invoice figures as decimal strings.
type SplitInput struct {
	ClientID   uuid.UUID
	PartsTotal string
	LaborTotal string
	TaxRate    string
}

// InvoiceSplit divides an invoice between the client's excess and the insurer's claim.
type InvoiceSplit struct {
	InsuranceExcess      string
	InsuranceClaimAmount string
	IsInsuranceJob       bool
	Subtotal             string
	Tax                  string
	Total                string
}
