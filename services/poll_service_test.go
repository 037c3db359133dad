package services

import (
	"testing"
	"time"

	"sessionpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPollService(t *testing.T) (*PollService, *ParticipantTokenService) {
	t.Helper()
	tokens := NewParticipantTokenService("test-secret")
	return NewPollService(newTestDB(t), nil, tokens), tokens
}

func createGroup(t *testing.T, s *PollService) *models.Group {
	t.Helper()
	group := &models.Group{
		UserID:      1,
		CreatorRole: models.RoleGroupLead,
		Name:        "Cohort A",
	}
	require.NoError(t, s.db.Create(group).Error)
	return group
}

func TestOpenPollAllocatesCode(t *testing.T) {
	s, _ := newPollService(t)
	group := createGroup(t, s)

	updated, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	require.NotNil(t, updated.StartPollCode)
	assert.Len(t, *updated.StartPollCode, 6)
	assert.False(t, updated.StartPollInitiated)
	assert.Nil(t, updated.StartPollDate)
	assert.Empty(t, updated.StartPollReadyParticipants)
}

func TestOpenPollUnknownGroup(t *testing.T) {
	s, _ := newPollService(t)

	_, err := s.OpenPoll(999, models.SlotStart)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestOpenPollUnknownSlot(t *testing.T) {
	s, _ := newPollService(t)
	group := createGroup(t, s)

	_, err := s.OpenPoll(group.ID, "middle")
	assert.ErrorIs(t, err, ErrUnknownSlot)
}

func TestOpenStartPollClosesEndPoll(t *testing.T) {
	s, _ := newPollService(t)
	group := createGroup(t, s)

	// Run a full cycle so the end poll is live with state.
	_, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	updated, err := s.OpenPoll(group.ID, models.SlotEnd)
	require.NoError(t, err)

	endCode := *updated.EndPollCode
	_, err = s.SetInitiated(endCode, true)
	require.NoError(t, err)
	_, _, err = s.MarkReady(endCode)
	require.NoError(t, err)

	// Opening start again must force-close the end poll.
	updated, err = s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)

	assert.Nil(t, updated.EndPollCode)
	assert.False(t, updated.EndPollInitiated)
	assert.Nil(t, updated.EndPollDate)
	assert.Empty(t, updated.EndPollReadyParticipants)
}

func TestOpenEndPollLeavesStartPoll(t *testing.T) {
	s, _ := newPollService(t)
	group := createGroup(t, s)

	opened, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	startCode := *opened.StartPollCode

	updated, err := s.OpenPoll(group.ID, models.SlotEnd)
	require.NoError(t, err)

	require.NotNil(t, updated.StartPollCode)
	assert.Equal(t, startCode, *updated.StartPollCode)
	require.NotNil(t, updated.EndPollCode)
	assert.NotEqual(t, startCode, *updated.EndPollCode)
}

func TestLookupPollPrefersStartSlot(t *testing.T) {
	s, _ := newPollService(t)

	// Inject the same code into one group's start slot and another group's
	// end slot. That can't happen through OpenPoll, but lookup order still
	// has to be deterministic.
	first := &models.Group{UserID: 1, CreatorRole: models.RoleGroupLead, Name: "first"}
	require.NoError(t, s.db.Create(first).Error)
	second := &models.Group{UserID: 1, CreatorRole: models.RoleGroupLead, Name: "second"}
	require.NoError(t, s.db.Create(second).Error)

	require.NoError(t, s.db.Model(first).Update("end_poll_code", "SHARED").Error)
	require.NoError(t, s.db.Model(second).Update("start_poll_code", "SHARED").Error)

	group, slot, err := s.LookupPoll("SHARED")
	require.NoError(t, err)
	assert.Equal(t, models.SlotStart, slot)
	assert.Equal(t, second.ID, group.ID)
}

func TestLookupPollNotFound(t *testing.T) {
	s, _ := newPollService(t)

	_, _, err := s.LookupPoll("NOPOLL")
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestSetInitiatedStampsDateBothWays(t *testing.T) {
	s, _ := newPollService(t)
	group := createGroup(t, s)

	opened, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	code := *opened.StartPollCode

	updated, err := s.SetInitiated(code, true)
	require.NoError(t, err)
	assert.True(t, updated.StartPollInitiated)
	require.NotNil(t, updated.StartPollDate)
	firstStamp := *updated.StartPollDate

	time.Sleep(5 * time.Millisecond)

	// The date is stamped again even when the flag is cleared.
	updated, err = s.SetInitiated(code, false)
	require.NoError(t, err)
	assert.False(t, updated.StartPollInitiated)
	require.NotNil(t, updated.StartPollDate)
	assert.True(t, updated.StartPollDate.After(firstStamp))
}

func TestCheckReadinessIssuesFreshTokenWithoutOne(t *testing.T) {
	s, tokens := newPollService(t)
	group := createGroup(t, s)

	opened, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	code := *opened.StartPollCode

	status, err := s.CheckReadiness(code, "")
	require.NoError(t, err)
	assert.False(t, status.TokenMatches)
	assert.False(t, status.AlreadySubmitted)
	require.NotEmpty(t, status.Token)

	claims, ok := tokens.Verify(status.Token)
	require.True(t, ok)
	assert.Equal(t, code, claims.PollCode)
	assert.Equal(t, group.ID, claims.GroupID)
}

func TestCheckReadinessReissuesOnPollMismatch(t *testing.T) {
	s, tokens := newPollService(t)
	group := createGroup(t, s)

	opened, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	code := *opened.StartPollCode

	// Token minted for a previous poll instance.
	stale, err := tokens.Issue(group.ID, "OLDPOL")
	require.NoError(t, err)

	status, err := s.CheckReadiness(code, stale)
	require.NoError(t, err)
	assert.False(t, status.TokenMatches)
	require.NotEmpty(t, status.Token)

	claims, ok := tokens.Verify(status.Token)
	require.True(t, ok)
	assert.Equal(t, code, claims.PollCode)
}

func TestCheckReadinessReportsSubmission(t *testing.T) {
	s, tokens := newPollService(t)
	group := createGroup(t, s)

	opened, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	code := *opened.StartPollCode

	token, _, err := s.MarkReady(code)
	require.NoError(t, err)

	status, err := s.CheckReadiness(code, token)
	require.NoError(t, err)
	assert.True(t, status.TokenMatches)
	assert.False(t, status.AlreadySubmitted)
	assert.Empty(t, status.Token)

	claims, ok := tokens.Verify(token)
	require.True(t, ok)
	require.NoError(t, s.db.Create(&models.Result{
		PollCode:   code,
		SessionID:  claims.SessionID,
		ResultCode: "RES001",
		IsStart:    true,
	}).Error)

	status, err = s.CheckReadiness(code, token)
	require.NoError(t, err)
	assert.True(t, status.TokenMatches)
	assert.True(t, status.AlreadySubmitted)
}

func TestMarkReadyAppendsDuplicates(t *testing.T) {
	s, _ := newPollService(t)
	group := createGroup(t, s)

	opened, err := s.OpenPoll(group.ID, models.SlotStart)
	require.NoError(t, err)
	code := *opened.StartPollCode

	_, state, err := s.MarkReady(code)
	require.NoError(t, err)
	assert.Equal(t, 1, state.ReadyCount)

	// The ready list is a tally, not a set: joining twice counts twice.
	_, state, err = s.MarkReady(code)
	require.NoError(t, err)
	assert.Equal(t, 2, state.ReadyCount)

	var stored models.Group
	require.NoError(t, s.db.First(&stored, group.ID).Error)
	assert.Len(t, stored.StartPollReadyParticipants, 2)
}

func TestMarkReadyUnknownCode(t *testing.T) {
	s, _ := newPollService(t)

	_, _, err := s.MarkReady("NOPOLL")
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestGetPollStateFallsBackToDatabase(t *testing.T) {
	s, _ := newPollService(t)
	group := createGroup(t, s)

	opened, err := s.OpenPoll(group.ID, models.SlotEnd)
	require.NoError(t, err)
	code := *opened.EndPollCode

	state, err := s.GetPollState(code)
	require.NoError(t, err)
	assert.Equal(t, group.ID, state.GroupID)
	assert.Equal(t, models.SlotEnd, state.Slot)
	assert.Equal(t, code, state.Code)
	assert.Equal(t, 0, state.ReadyCount)
}
