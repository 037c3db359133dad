package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"sessionpulse/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type PollService struct {
	db     *gorm.DB
	redis  *redis.Client
	tokens *ParticipantTokenService
}

func NewPollService(db *gorm.DB, redisClient *redis.Client, tokens *ParticipantTokenService) *PollService {
	return &PollService{
		db:     db,
		redis:  redisClient,
		tokens: tokens,
	}
}

// PollState is the participant-facing snapshot of a live poll, cached in
// Redis under poll:<code> so code lookups don't always hit the database.
type PollState struct {
	GroupID    uint   `json:"group_id"`
	GroupName  string `json:"group_name"`
	Slot       string `json:"slot"`
	Code       string `json:"code"`
	Initiated  bool   `json:"initiated"`
	ReadyCount int    `json:"ready_count"`
}

// ReadinessStatus is returned to a participant polling a code before
// submitting. Token is only set when a fresh token had to be issued.
type ReadinessStatus struct {
	Initiated        bool   `json:"initiated"`
	TokenMatches     bool   `json:"token_matches"`
	AlreadySubmitted bool   `json:"already_submitted"`
	Token            string `json:"token,omitempty"`
}

// OpenPoll allocates a fresh join code for the given slot and resets that
// slot's state. Opening the start poll also force-closes any end poll: the
// two cannot be live for different cohort runs at once.
func (s *PollService) OpenPoll(groupID uint, slot string) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	code, err := AllocateCode(AlphanumericCode, GroupCodeIndex{DB: s.db})
	if err != nil {
		return nil, err
	}

	switch slot {
	case models.SlotStart:
		oldStart, oldEnd := group.StartPollCode, group.EndPollCode
		group.StartPollCode = &code
		group.StartPollInitiated = false
		group.StartPollDate = nil
		group.StartPollReadyParticipants = []string{}
		// A new start poll invalidates any in-progress end poll.
		group.EndPollCode = nil
		group.EndPollInitiated = false
		group.EndPollDate = nil
		group.EndPollReadyParticipants = []string{}
		if oldStart != nil {
			s.clearPollState(*oldStart)
		}
		if oldEnd != nil {
			s.clearPollState(*oldEnd)
		}
	case models.SlotEnd:
		oldEnd := group.EndPollCode
		group.EndPollCode = &code
		group.EndPollInitiated = false
		group.EndPollDate = nil
		group.EndPollReadyParticipants = []string{}
		if oldEnd != nil {
			s.clearPollState(*oldEnd)
		}
	default:
		return nil, ErrUnknownSlot
	}

	if err := s.db.Save(&group).Error; err != nil {
		return nil, err
	}

	s.storePollState(code, s.stateFor(&group, slot))

	return &group, nil
}

// LookupPoll resolves a join code to its group and slot. The start column is
// checked first; if a code ever appeared in both slots, start wins.
func (s *PollService) LookupPoll(code string) (*models.Group, string, error) {
	var group models.Group
	err := s.db.Where("start_poll_code = ?", code).First(&group).Error
	if err == nil {
		return &group, models.SlotStart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	err = s.db.Where("end_poll_code = ?", code).First(&group).Error
	if err == nil {
		return &group, models.SlotEnd, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	return nil, "", ErrPollNotFound
}

// GetPollState returns the participant-facing state for a code, trying the
// Redis cache first and falling back to the database.
func (s *PollService) GetPollState(code string) (*PollState, error) {
	if state := s.getPollState(code); state != nil {
		return state, nil
	}

	group, slot, err := s.LookupPoll(code)
	if err != nil {
		return nil, err
	}

	state := s.stateFor(group, slot)
	s.storePollState(code, state)
	return state, nil
}

// SetInitiated flips the facilitator-triggered flag for the poll behind the
// given code. The slot date is stamped on both transitions, matching how the
// poll date has always behaved.
func (s *PollService) SetInitiated(code string, value bool) (*models.Group, error) {
	group, slot, err := s.LookupPoll(code)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if slot == models.SlotStart {
		group.StartPollInitiated = value
		group.StartPollDate = &now
	} else {
		group.EndPollInitiated = value
		group.EndPollDate = &now
	}

	if err := s.db.Save(group).Error; err != nil {
		return nil, err
	}

	s.storePollState(code, s.stateFor(group, slot))

	return group, nil
}

// CheckReadiness tells a participant where they stand against the poll at
// code. A token minted for an older poll (or no token at all) is not an
// error: a fresh token for this poll is issued and returned instead.
func (s *PollService) CheckReadiness(code, presentedToken string) (*ReadinessStatus, error) {
	group, slot, err := s.LookupPoll(code)
	if err != nil {
		return nil, err
	}

	status := &ReadinessStatus{}
	if slot == models.SlotStart {
		status.Initiated = group.StartPollInitiated
	} else {
		status.Initiated = group.EndPollInitiated
	}

	claims, ok := s.tokens.Verify(presentedToken)
	if !ok || claims.PollCode != code {
		fresh, err := s.tokens.Issue(group.ID, code)
		if err != nil {
			return nil, err
		}
		status.Token = fresh
		return status, nil
	}

	status.TokenMatches = true

	var count int64
	if err := s.db.Model(&models.Result{}).
		Where("poll_code = ? AND session_id = ?", code, claims.SessionID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	status.AlreadySubmitted = count > 0

	return status, nil
}

// MarkReady records that a participant has joined the poll at code and hands
// them a token bound to this poll instance. The ready list is an append-only
// tally; duplicate joins leave duplicate entries.
func (s *PollService) MarkReady(code string) (string, *PollState, error) {
	group, slot, err := s.LookupPoll(code)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(group.ID, code)
	if err != nil {
		return "", nil, err
	}

	if slot == models.SlotStart {
		group.StartPollReadyParticipants = append(group.StartPollReadyParticipants, token)
	} else {
		group.EndPollReadyParticipants = append(group.EndPollReadyParticipants, token)
	}

	if err := s.db.Save(group).Error; err != nil {
		return "", nil, err
	}

	state := s.stateFor(group, slot)
	s.storePollState(code, state)

	return token, state, nil
}

func (s *PollService) stateFor(group *models.Group, slot string) *PollState {
	state := &PollState{
		GroupID:   group.ID,
		GroupName: group.Name,
		Slot:      slot,
	}
	if slot == models.SlotStart {
		if group.StartPollCode != nil {
			state.Code = *group.StartPollCode
		}
		state.Initiated = group.StartPollInitiated
		state.ReadyCount = len(group.StartPollReadyParticipants)
	} else {
		if group.EndPollCode != nil {
			state.Code = *group.EndPollCode
		}
		state.Initiated = group.EndPollInitiated
		state.ReadyCount = len(group.EndPollReadyParticipants)
	}
	return state
}

func (s *PollService) storePollState(code string, state *PollState) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("Failed to marshal poll state for %s: %v", code, err)
		return
	}

	if err := s.redis.Set(context.Background(), pollStateKey(code), data, participantTokenTTL).Err(); err != nil {
		log.Printf("Failed to store poll state for %s in Redis: %v", code, err)
	}
}

func (s *PollService) getPollState(code string) *PollState {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(context.Background(), pollStateKey(code)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error getting poll state for %s: %v", code, err)
		}
		return nil
	}

	var state PollState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		log.Printf("Failed to unmarshal poll state for %s: %v", code, err)
		return nil
	}

	return &state
}

func (s *PollService) clearPollState(code string) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(context.Background(), pollStateKey(code)).Err(); err != nil {
		log.Printf("Failed to clear poll state for %s in Redis: %v", code, err)
	}
}

func pollStateKey(code string) string {
	return fmt.Sprintf("poll:%s", code)
}
