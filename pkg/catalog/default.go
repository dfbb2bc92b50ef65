package catalog

import "github.com/aretw0/taxwizard/pkg/domain"

var yesNo = []domain.Option{
	{Value: domain.AnswerYes, Label: "Yes"},
	{Value: domain.AnswerNo, Label: "No"},
}

// Default returns the canonical eligibility questionnaire.
//
// The property-owner applicant type is declared but hidden: applicants never see it,
// yet the routing table keeps a full branch for it.
// TODO(product): confirm whether property-owner is reachable from another entry point or is dead logic.
func Default() *Catalog {
	return MustNew(
		domain.Question{
			ID:      domain.QuestionHasTIN,
			Prompt:  "Do you already have a Taxpayer Identification Number (TIN)?",
			Options: yesNo,
		},
		domain.Question{
			ID:     domain.QuestionApplicantType,
			Prompt: "Which of the following best describes you?",
			Options: []domain.Option{
				{
					Value:       domain.ApplicantSoleProprietor,
					Label:       "Individual",
					Description: "You earn income in your own name, with or without a registered business.",
				},
				{
					Value:       domain.ApplicantOrganization,
					Label:       "Organization",
					Description: "A partnership, company, association or other legal entity.",
				},
				{
					Value:       domain.ApplicantPropertyOwner,
					Label:       "Residential property owner",
					Description: "You only need to declare residential property.",
					Hidden:      true,
				},
			},
		},
		domain.Question{
			ID:        domain.QuestionRegisterBiz,
			Prompt:    "Do you want to register a business under your name?",
			Options:   yesNo,
			Condition: `is("applicant-type", "sole-proprietor")`,
			Relevant: func(a domain.Answers) bool {
				return a.Is(domain.QuestionApplicantType, domain.ApplicantSoleProprietor)
			},
		},
		domain.Question{
			ID:        domain.QuestionHasOwners,
			Prompt:    "Does the organization have owners, partners or shareholders to declare?",
			Options:   yesNo,
			Condition: `is("applicant-type", "organization")`,
			Relevant: func(a domain.Answers) bool {
				return a.Is(domain.QuestionApplicantType, domain.ApplicantOrganization)
			},
		},
		domain.Question{
			ID:        domain.QuestionHasBranches,
			Prompt:    "Do you operate one or more branches?",
			Options:   yesNo,
			Condition: `is("applicant-type", "organization") || (is("applicant-type", "sole-proprietor") && is("register-business", "yes"))`,
			Relevant: func(a domain.Answers) bool {
				if a.Is(domain.QuestionApplicantType, domain.ApplicantOrganization) {
					return true
				}
				return a.Is(domain.QuestionApplicantType, domain.ApplicantSoleProprietor) &&
					a.Is(domain.QuestionRegisterBiz, domain.AnswerYes)
			},
		},
		domain.Question{
			ID:        domain.QuestionDeclareProperty,
			Prompt:    "Do you own residential property you need to declare?",
			Options:   yesNo,
			Condition: `!is("applicant-type", "property-owner")`,
			Relevant: func(a domain.Answers) bool {
				return !a.Is(domain.QuestionApplicantType, domain.ApplicantPropertyOwner)
			},
		},
	)
}
