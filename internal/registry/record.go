package registry

// Record is a single producer entry from the national packaging register.
// Field values are kept exactly as the upstream export provides them; only
// lookup keys are normalized.
type Record struct {
	RegistrationNumber string `json:"registrationNumber"`
	CompanyName        string `json:"companyName"`
	VATNumber          string `json:"vatNumber,omitempty"`
	TaxNumber          string `json:"taxNumber,omitempty"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	PostalCode         string `json:"postalCode,omitempty"`
}
