package partners

// Partner kinds. Physical persons onboard through the FIN lookup branch;
// legal entities register with company details directly.
const (
	KindPhysical = "PHYSICAL"
	KindLegal    = "LEGAL"
)

// Partner is a consignment partner supplying jewelry for rent or sale.
type Partner struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind,omitempty"`
	FIN         string `json:"fin,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	TaxID       string `json:"taxId,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	UserID      int64  `json:"userId,omitempty"`
	Status      string `json:"status,omitempty"`
}

// DisplayName returns the name shown in lists and documents.
func (p Partner) DisplayName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	if p.FirstName == "" && p.LastName == "" {
		return ""
	}
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
