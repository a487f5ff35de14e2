package session

import "strings"

// DIDDocument describes an identity's verification keys and service
// endpoints, as published in the DID registry.
type DIDDocument struct {
	Context            []string             `json:"@context,omitempty"`
	ID                 string               `json:"id"`
	AlsoKnownAs        []string             `json:"alsoKnownAs,omitempty"`
	VerificationMethod []VerificationMethod `json:"verificationMethod,omitempty"`
	Service            []Service            `json:"service,omitempty"`
}

// VerificationMethod is a public key entry in a DID document.
type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase,omitempty"`
}

// Service is a service endpoint entry in a DID document.
type Service struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

const (
	pdsServiceID   = "#atproto_pds"
	pdsServiceType = "AtprotoPersonalDataServer"
)

// PDSEndpoint returns the URL of the identity's personal data server, or an
// empty string when the document lists none.
func (d *DIDDocument) PDSEndpoint() string {
	if d == nil {
		return ""
	}
	for _, svc := range d.Service {
		if strings.HasSuffix(svc.ID, pdsServiceID) || svc.Type == pdsServiceType {
			return svc.ServiceEndpoint
		}
	}
	return ""
}
