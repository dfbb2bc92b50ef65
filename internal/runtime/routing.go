package runtime

import "github.com/aretw0/taxwizard/pkg/domain"

// Descriptions attached to routing results.
const (
	DescSoleProprietorBusiness = "Register your business as a sole proprietorship"
	DescNoAdditionalForm       = "No additional form needed"
	DescOrganization           = "Register your partnership, corporation or organization"
	DescPropertyOnly           = "Declare your residential property"
	DescFallback               = "Register as a sole proprietorship and declare residential property"

	BlockReasonNoTIN = "Obtain a Taxpayer Identification Number at a tax office before registering"
)

// Verdict applies the decision table with its precedence rules:
// property owners complete immediately, a missing TIN blocks, everything else is
// routed by Decide. Exactly one of the return values is non-nil.
func Verdict(answers domain.Answers) (domain.RoutingResult, *domain.Blocker) {
	if answers.Is(domain.QuestionApplicantType, domain.ApplicantPropertyOwner) {
		return Decide(answers), nil
	}
	if answers.Is(domain.QuestionHasTIN, domain.AnswerNo) {
		return nil, &domain.Blocker{
			QuestionID: domain.QuestionHasTIN,
			Reason:     BlockReasonNoTIN,
		}
	}
	return Decide(answers), nil
}

// TerminatesEarly reports whether answers already settle the outcome before the
// remaining questions are asked.
func TerminatesEarly(answers domain.Answers) bool {
	return answers.Is(domain.QuestionApplicantType, domain.ApplicantPropertyOwner) ||
		answers.Is(domain.QuestionHasTIN, domain.AnswerNo)
}

// IsFallback reports whether Decide would take its default branch.
func IsFallback(answers domain.Answers) bool {
	switch answers.Get(domain.QuestionApplicantType) {
	case domain.ApplicantPropertyOwner, domain.ApplicantSoleProprietor, domain.ApplicantOrganization:
		return false
	}
	return true
}

// Decide maps a completed answer set to the forms the applicant must file.
// It is total: unknown or missing applicant types take the sole-proprietorship
// fallback. The TIN prerequisite is not consulted here; see Verdict.
func Decide(answers domain.Answers) domain.RoutingResult {
	switch answers.Get(domain.QuestionApplicantType) {
	case domain.ApplicantPropertyOwner:
		return domain.PropertyOnly{
			RequiredForms: []string{domain.FormPropertyDeclaration},
			Summary:       DescPropertyOnly,
		}
	case domain.ApplicantSoleProprietor:
		return decideSoleProprietor(answers)
	case domain.ApplicantOrganization:
		return decideOrganization(answers)
	}
	return domain.SoleProprietorship{
		RequiredForms: []string{domain.FormSP01, domain.FormPropertyDeclaration},
		Summary:       DescFallback,
		NeedsProperty: true,
	}
}

func decideSoleProprietor(answers domain.Answers) domain.SoleProprietorship {
	r := domain.SoleProprietorship{
		RequiredForms: []string{},
		Summary:       DescNoAdditionalForm,
	}
	if answers.Is(domain.QuestionRegisterBiz, domain.AnswerYes) {
		r.RequiredForms = append(r.RequiredForms, domain.FormSP01)
		r.Summary = DescSoleProprietorBusiness
		if answers.Is(domain.QuestionHasBranches, domain.AnswerYes) {
			r.RequiredForms = append(r.RequiredForms, domain.FormBR01)
			r.HasBranches = true
		}
	}
	if answers.Is(domain.QuestionDeclareProperty, domain.AnswerYes) {
		r.RequiredForms = append(r.RequiredForms, domain.FormPropertyDeclaration)
		r.NeedsProperty = true
	}
	return r
}

func decideOrganization(answers domain.Answers) domain.PartnershipCorporation {
	r := domain.PartnershipCorporation{
		RequiredForms: []string{domain.FormRF01},
		Summary:       DescOrganization,
		HasOwners:     answers.Is(domain.QuestionHasOwners, domain.AnswerYes),
		HasBranches:   answers.Is(domain.QuestionHasBranches, domain.AnswerYes),
		NeedsProperty: answers.Is(domain.QuestionDeclareProperty, domain.AnswerYes),
	}
	if r.HasOwners {
		r.RequiredForms = append(r.RequiredForms, domain.FormOS01)
	}
	if r.HasBranches {
		r.RequiredForms = append(r.RequiredForms, domain.FormBR01)
	}
	if r.NeedsProperty {
		r.RequiredForms = append(r.RequiredForms, domain.FormPropertyDeclaration)
	}
	return r
}
