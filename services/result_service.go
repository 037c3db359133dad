package services

import (
	"errors"

	"sessionpulse/models"

	"gorm.io/gorm"
)

type ResultService struct {
	db     *gorm.DB
	tokens *ParticipantTokenService
}

func NewResultService(db *gorm.DB, tokens *ParticipantTokenService) *ResultService {
	return &ResultService{db: db, tokens: tokens}
}

type SubmitResultRequest struct {
	D1 int `json:"d1" binding:"min=0"`
	D2 int `json:"d2" binding:"min=0"`
	D3 int `json:"d3" binding:"min=0"`
	D4 int `json:"d4" binding:"min=0"`
	D5 int `json:"d5" binding:"min=0"`
	D6 int `json:"d6" binding:"min=0"`
	D7 int `json:"d7" binding:"min=0"`
	D8 int `json:"d8" binding:"min=0"`

	PollCode string `json:"poll_code" binding:"required"`
	Token    string `json:"token"`
	IsStart  bool   `json:"is_start"`

	// For end submissions: the shareable code of the participant's own start
	// result, so pre and post can be paired.
	StartResultCode string `json:"start_result_code"`
}

// SubmitResult stores one participant's eight answers against a live poll
// code and assigns a fresh shareable result code. A missing or stale token
// doesn't block submission; it only loses the duplicate-submission check.
func (s *ResultService) SubmitResult(req *SubmitResultRequest) (*models.Result, error) {
	var count int64
	if err := s.db.Model(&models.Group{}).
		Where("start_poll_code = ? OR end_poll_code = ?", req.PollCode, req.PollCode).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrPollNotFound
	}

	sessionID := ""
	if claims, ok := s.tokens.Verify(req.Token); ok && claims.PollCode == req.PollCode {
		sessionID = claims.SessionID
	}

	resultCode, err := AllocateCode(AlphanumericCode, ResultCodeIndex{DB: s.db})
	if err != nil {
		return nil, err
	}

	result := models.Result{
		D1: req.D1, D2: req.D2, D3: req.D3, D4: req.D4,
		D5: req.D5, D6: req.D6, D7: req.D7, D8: req.D8,

		PollCode:   req.PollCode,
		SessionID:  sessionID,
		ResultCode: resultCode,
		IsStart:    req.IsStart,
	}

	if !req.IsStart && req.StartResultCode != "" {
		var start models.Result
		err := s.db.Where("result_code = ? AND is_start = ?", req.StartResultCode, true).
			First(&start).Error
		if err == nil {
			result.StartResultID = &start.ID
			result.StartResultCode = &start.ResultCode
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// An unknown start code is tolerated: the end result still counts,
		// it just stays unpaired.
	}

	if err := s.db.Create(&result).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *ResultService) GetResultByCode(resultCode string) (*models.Result, error) {
	var result models.Result
	if err := s.db.Where("result_code = ?", resultCode).First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (s *ResultService) GetResults() ([]models.Result, error) {
	var results []models.Result
	err := s.db.Order("created_at DESC").Find(&results).Error
	return results, err
}

func (s *ResultService) DeleteResult(resultID uint) error {
	result := s.db.Delete(&models.Result{}, resultID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrResultNotFound
	}
	return nil
}

type AddSurveyResponseRequest struct {
	Text       string `json:"text" binding:"required"`
	ResultCode string `json:"result_code"`
	PollCode   string `json:"poll_code"`
}

func (s *ResultService) AddSurveyResponse(req *AddSurveyResponseRequest) (*models.SurveyResponse, error) {
	response := models.SurveyResponse{
		Text:       req.Text,
		ResultCode: req.ResultCode,
		PollCode:   req.PollCode,
	}

	if err := s.db.Create(&response).Error; err != nil {
		return nil, err
	}

	return &response, nil
}

func (s *ResultService) GetSurveyResponses(pollCode string) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	query := s.db.Order("created_at DESC")
	if pollCode != "" {
		query = query.Where("poll_code = ?", pollCode)
	}
	err := query.Find(&responses).Error
	return responses, err
}
