package services

import (
	"errors"
	"fmt"

	"sessionpulse/models"

	"gorm.io/gorm"
)

type GroupService struct {
	db *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

type CreateGroupRequest struct {
	Name         string `json:"name"`
	Season       string `json:"season"`
	Year         string `json:"year"`
	Organization string `json:"organization"`
}

type EditGroupRequest struct {
	Name         string `json:"name"`
	Season       string `json:"season"`
	Year         string `json:"year"`
	Organization string `json:"organization"`
}

func (s *GroupService) CreateGroup(user *models.User, req *CreateGroupRequest) (*models.Group, error) {
	group := models.Group{
		UserID:           user.ID,
		CreatorRole:      user.Role,
		CreatorShortName: shortName(user),
		Name:             groupName(user, req.Name, req.Organization, req.Season, req.Year),
		Season:           req.Season,
		Year:             req.Year,
		Organization:     req.Organization,
	}

	if err := s.db.Create(&group).Error; err != nil {
		return nil, err
	}

	return &group, nil
}

func (s *GroupService) EditGroup(groupID uint, user *models.User, req *EditGroupRequest) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	group.Name = groupName(user, req.Name, req.Organization, req.Season, req.Year)
	if user.Role == models.RoleFacilitator {
		group.Season = req.Season
		group.Year = req.Year
		group.Organization = req.Organization
	}

	if err := s.db.Save(&group).Error; err != nil {
		return nil, err
	}

	return &group, nil
}

func (s *GroupService) GetUserGroups(userID uint) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&groups).Error
	return groups, err
}

func (s *GroupService) GetGroup(groupID uint) (*models.Group, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s *GroupService) DeleteGroup(groupID uint) error {
	result := s.db.Delete(&models.Group{}, groupID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGroupNotFound
	}
	return nil
}

// groupName applies the facilitator naming convention: facilitator groups are
// always named "Organization, Season, Year"; everyone else names their own.
func groupName(user *models.User, name, organization, season, year string) string {
	if user.Role == models.RoleFacilitator {
		return fmt.Sprintf("%s, %s, %s", organization, season, year)
	}
	return name
}

// shortName renders the owner's display label as "Last F".
func shortName(user *models.User) string {
	initial := ""
	if user.FirstName != "" {
		initial = string([]rune(user.FirstName)[0])
	}
	return fmt.Sprintf("%s %s", user.LastName, initial)
}
