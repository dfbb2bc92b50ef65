package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_UserType(t *testing.T) {
	assert.Equal(t, "SP-01", domain.TrackSoleProprietorship.UserType())
	assert.Equal(t, "RF-01", domain.TrackPartnershipCorporation.UserType())
	assert.Equal(t, "RP-01", domain.TrackPropertyOnly.UserType())
	assert.False(t, domain.Track("unknown").Valid())
}

func TestEnvelope_OmitsForeignFlags(t *testing.T) {
	env := domain.Envelope(domain.PropertyOnly{
		RequiredForms: []string{domain.FormPropertyDeclaration},
		Summary:       "Property declaration only",
	})
	require.NotNil(t, env)
	assert.Nil(t, env.HasOwners)
	assert.Nil(t, env.HasBranches)
	assert.Nil(t, env.NeedsProperty)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "has_owners")
}

func TestEnvelope_Result(t *testing.T) {
	original := domain.PartnershipCorporation{
		RequiredForms: []string{domain.FormRF01, domain.FormOS01},
		Summary:       "Organization registration",
		HasOwners:     true,
	}

	rebuilt, err := domain.Envelope(original).Result()
	require.NoError(t, err)
	assert.Equal(t, original, rebuilt)

	_, err = (&domain.RoutingEnvelope{Track: "bogus"}).Result()
	assert.Error(t, err)
}

func TestForms_ReturnsCopy(t *testing.T) {
	r := domain.SoleProprietorship{RequiredForms: []string{domain.FormSP01}}
	forms := r.Forms()
	forms[0] = "tampered"
	assert.Equal(t, []string{domain.FormSP01}, r.Forms())
}

func TestState_JSONRoundTrip(t *testing.T) {
	state := domain.NewState("sess-json")
	state.Answers[domain.QuestionHasTIN] = domain.AnswerYes
	state.History = []int{0, 1}
	state.Status = domain.StatusCompleted
	state.Result = domain.SoleProprietorship{
		RequiredForms: []string{domain.FormSP01, domain.FormBR01},
		Summary:       "Business registration",
		HasBranches:   true,
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"track":"sole-proprietorship"`)

	var loaded domain.State
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, state.Answers, loaded.Answers)
	assert.Equal(t, state.History, loaded.History)
	assert.Equal(t, state.Result, loaded.Result)
	assert.Equal(t, 1, loaded.Position())
}

func TestState_SnapshotIsolation(t *testing.T) {
	state := domain.NewState("sess")
	snap := state.Snapshot()
	snap.Answers["x"] = "y"
	snap.History = append(snap.History, 5)

	assert.Empty(t, state.Answers)
	assert.Equal(t, []int{0}, state.History)
}

func TestQuestion_Options(t *testing.T) {
	q := domain.Question{
		ID: domain.QuestionApplicantType,
		Options: []domain.Option{
			{Value: domain.ApplicantSoleProprietor},
			{Value: domain.ApplicantPropertyOwner, Hidden: true},
		},
	}

	assert.Len(t, q.VisibleOptions(), 1)
	assert.True(t, q.HasOption(domain.ApplicantPropertyOwner))
	assert.False(t, q.HasOption("nobody"))
	assert.True(t, q.IsRelevant(nil))
}
