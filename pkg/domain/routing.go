package domain

import "fmt"

// RoutingResult is the terminal artifact of a completed questionnaire.
// The set of implementations is closed: SoleProprietorship,
// PartnershipCorporation and PropertyOnly.
type RoutingResult interface {
	Track() Track
	Forms() []string
	Description() string
	UserType() string

	sealed()
}

// SoleProprietorship routes an individual applicant.
type SoleProprietorship struct {
	RequiredForms []string
	Summary       string
	HasBranches   bool
	NeedsProperty bool
}

func (r SoleProprietorship) Track() Track        { return TrackSoleProprietorship }
func (r SoleProprietorship) Forms() []string     { return cloneForms(r.RequiredForms) }
func (r SoleProprietorship) Description() string { return r.Summary }
func (r SoleProprietorship) UserType() string    { return r.Track().UserType() }
func (SoleProprietorship) sealed()               {}

// PartnershipCorporation routes an organization applicant.
type PartnershipCorporation struct {
	RequiredForms []string
	Summary       string
	HasOwners     bool
	HasBranches   bool
	NeedsProperty bool
}

func (r PartnershipCorporation) Track() Track        { return TrackPartnershipCorporation }
func (r PartnershipCorporation) Forms() []string     { return cloneForms(r.RequiredForms) }
func (r PartnershipCorporation) Description() string { return r.Summary }
func (r PartnershipCorporation) UserType() string    { return r.Track().UserType() }
func (PartnershipCorporation) sealed()               {}

// PropertyOnly routes a residential property owner to the declaration alone.
type PropertyOnly struct {
	RequiredForms []string
	Summary       string
}

func (r PropertyOnly) Track() Track        { return TrackPropertyOnly }
func (r PropertyOnly) Forms() []string     { return cloneForms(r.RequiredForms) }
func (r PropertyOnly) Description() string { return r.Summary }
func (r PropertyOnly) UserType() string    { return r.Track().UserType() }
func (PropertyOnly) sealed()               {}

func cloneForms(forms []string) []string {
	out := make([]string, len(forms))
	copy(out, forms)
	return out
}

// RoutingEnvelope is the flat wire shape of a RoutingResult.
// Flags that do not belong to a track are omitted.
type RoutingEnvelope struct {
	Track         Track    `json:"track"`
	UserType      string   `json:"user_type"`
	Forms         []string `json:"forms"`
	Description   string   `json:"description"`
	HasOwners     *bool    `json:"has_owners,omitempty"`
	HasBranches   *bool    `json:"has_branches,omitempty"`
	NeedsProperty *bool    `json:"needs_property,omitempty"`
}

// Envelope converts a result into its wire shape. A nil result yields nil.
func Envelope(r RoutingResult) *RoutingEnvelope {
	if r == nil {
		return nil
	}
	env := &RoutingEnvelope{
		Track:       r.Track(),
		UserType:    r.UserType(),
		Forms:       r.Forms(),
		Description: r.Description(),
	}
	switch v := r.(type) {
	case SoleProprietorship:
		env.HasBranches = &v.HasBranches
		env.NeedsProperty = &v.NeedsProperty
	case PartnershipCorporation:
		env.HasOwners = &v.HasOwners
		env.HasBranches = &v.HasBranches
		env.NeedsProperty = &v.NeedsProperty
	}
	return env
}

// Result rebuilds the typed variant from the envelope.
func (e *RoutingEnvelope) Result() (RoutingResult, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Track {
	case TrackSoleProprietorship:
		return SoleProprietorship{
			RequiredForms: cloneForms(e.Forms),
			Summary:       e.Description,
			HasBranches:   deref(e.HasBranches),
			NeedsProperty: deref(e.NeedsProperty),
		}, nil
	case TrackPartnershipCorporation:
		return PartnershipCorporation{
			RequiredForms: cloneForms(e.Forms),
			Summary:       e.Description,
			HasOwners:     deref(e.HasOwners),
			HasBranches:   deref(e.HasBranches),
			NeedsProperty: deref(e.NeedsProperty),
		}, nil
	case TrackPropertyOnly:
		return PropertyOnly{
			RequiredForms: cloneForms(e.Forms),
			Summary:       e.Description,
		}, nil
	}
	return nil, fmt.Errorf("unknown routing track %q", e.Track)
}

func deref(b *bool) bool {
	return b != nil && *b
}
