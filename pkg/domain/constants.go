package domain

// Question identifiers of the canonical eligibility catalog.
const (
	QuestionHasTIN          = "has-tin"
	QuestionApplicantType   = "applicant-type"
	QuestionRegisterBiz     = "register-business"
	QuestionHasOwners       = "has-owners"
	QuestionHasBranches     = "has-branches"
	QuestionDeclareProperty = "declare-property"
)

// Answer value tokens.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"

	ApplicantSoleProprietor = "sole-proprietor"
	ApplicantOrganization   = "organization"
	ApplicantPropertyOwner  = "property-owner"
)

// Form identifiers emitted by the routing decision table.
const (
	FormSP01                = "SP01"
	FormRF01                = "RF01"
	FormOS01                = "OS01"
	FormBR01                = "BR01"
	FormPropertyDeclaration = "Residential Property Declaration"
)

// Track identifies one of the mutually exclusive registration paths.
type Track string

const (
	TrackSoleProprietorship     Track = "sole-proprietorship"
	TrackPartnershipCorporation Track = "partnership-corporation"
	TrackPropertyOnly           Track = "property-only"
)

// UserType returns the query-parameter token the surrounding application uses to
// pick the long-form data-entry screens for a track.
func (t Track) UserType() string {
	switch t {
	case TrackSoleProprietorship:
		return "SP-01"
	case TrackPartnershipCorporation:
		return "RF-01"
	case TrackPropertyOnly:
		return "RP-01"
	}
	return ""
}

// Valid reports whether t is one of the known tracks.
func (t Track) Valid() bool {
	return t.UserType() != ""
}
