package form

import (
	"context"
	"strings"

	"replyai/internal/domain"
)

// ProfileForm is the raw profile input; URL fields hold one URL per line.
type ProfileForm struct {
	Name           string
	Agency         string
	Role           string
	Signature      string
	SalesProofURLs string
	PortfolioURLs  string
}

// SaveProfile cleans the form and overwrites the stored profile.
func (c *Controller) SaveProfile(ctx context.Context, f ProfileForm) (domain.Profile, error) {
	p := domain.Profile{
		Name:                  strings.TrimSpace(f.Name),
		Agency:                strings.TrimSpace(f.Agency),
		Role:                  strings.TrimSpace(f.Role),
		Signature:             strings.TrimSpace(f.Signature),
		DefaultSalesProofURLs: SplitURLs(f.SalesProofURLs),
		DefaultPortfolioURLs:  SplitURLs(f.PortfolioURLs),
	}
	if err := c.store.SaveProfile(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	c.surface.SetStatus(StatusProfileSaved)
	return p, nil
}

// CurrentProfile returns the stored profile as form input.
func (c *Controller) CurrentProfile(ctx context.Context) ProfileForm {
	p := c.store.LoadProfile(ctx)
	return ProfileForm{
		Name:           p.Name,
		Agency:         p.Agency,
		Role:           p.Role,
		Signature:      p.Signature,
		SalesProofURLs: strings.Join(p.DefaultSalesProofURLs, "\n"),
		PortfolioURLs:  strings.Join(p.DefaultPortfolioURLs, "\n"),
	}
}
