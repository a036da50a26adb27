package domain

// Profile is the salesperson's reusable identity and default reference links.
// There is one per local store.
type Profile struct {
	Name                  string   `json:"name"`
	Agency                string   `json:"agency"`
	Role                  string   `json:"role"`
	Signature             string   `json:"signature"`
	DefaultSalesProofURLs []string `json:"defaultSalesProofUrls"`
	DefaultPortfolioURLs  []string `json:"defaultPortfolioUrls"`
}

// Normalize replaces nil URL lists with empty ones so a saved profile never
// serializes them as null.
func (p Profile) Normalize() Profile {
	if p.DefaultSalesProofURLs == nil {
		p.DefaultSalesProofURLs = []string{}
	}
	if p.DefaultPortfolioURLs == nil {
		p.DefaultPortfolioURLs = []string{}
	}
	return p
}

// Snapshot returns the identity part of the profile sent with a request.
func (p Profile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		Name:      p.Name,
		Agency:    p.Agency,
		Role:      p.Role,
		Signature: p.Signature,
	}
}

// ProfileSnapshot is the salesperson identity embedded in a GenerationRequest.
type ProfileSnapshot struct {
	Name      string `json:"name"`
	Agency    string `json:"agency"`
	Role      string `json:"role"`
	Signature string `json:"signature"`
}
