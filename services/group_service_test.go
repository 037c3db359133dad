package services

import (
	"testing"

	"sessionpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupLeadKeepsChosenName(t *testing.T) {
	s := NewGroupService(newTestDB(t))

	lead := &models.User{
		Email: "lead@example.com", HashedPassword: "x",
		Role: models.RoleGroupLead, FirstName: "Ada", LastName: "Lovelace",
	}
	require.NoError(t, s.db.Create(lead).Error)

	group, err := s.CreateGroup(lead, &CreateGroupRequest{Name: "Spring Leads"})
	require.NoError(t, err)
	assert.Equal(t, "Spring Leads", group.Name)
	assert.Equal(t, models.RoleGroupLead, group.CreatorRole)
	assert.Equal(t, "Lovelace A", group.CreatorShortName)
}

func TestCreateGroupFacilitatorGeneratesName(t *testing.T) {
	s := NewGroupService(newTestDB(t))

	facilitator := &models.User{
		Email: "fac@example.com", HashedPassword: "x",
		Role: models.RoleFacilitator, FirstName: "Grace", LastName: "Hopper",
	}
	require.NoError(t, s.db.Create(facilitator).Error)

	group, err := s.CreateGroup(facilitator, &CreateGroupRequest{
		Name:         "ignored",
		Organization: "Acme Corp",
		Season:       "Fall",
		Year:         "2026",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp, Fall, 2026", group.Name)
	assert.Equal(t, "Fall", group.Season)
	assert.Equal(t, "2026", group.Year)
}

func TestEditGroupFacilitatorRegeneratesName(t *testing.T) {
	s := NewGroupService(newTestDB(t))

	facilitator := &models.User{
		Email: "fac@example.com", HashedPassword: "x",
		Role: models.RoleFacilitator, LastName: "Hopper",
	}
	require.NoError(t, s.db.Create(facilitator).Error)

	group, err := s.CreateGroup(facilitator, &CreateGroupRequest{
		Organization: "Acme Corp", Season: "Fall", Year: "2026",
	})
	require.NoError(t, err)

	edited, err := s.EditGroup(group.ID, facilitator, &EditGroupRequest{
		Organization: "Initech", Season: "Winter", Year: "2027",
	})
	require.NoError(t, err)
	assert.Equal(t, "Initech, Winter, 2027", edited.Name)
	assert.Equal(t, "Initech", edited.Organization)
}

func TestEditGroupNotFound(t *testing.T) {
	s := NewGroupService(newTestDB(t))

	user := &models.User{Email: "lead@example.com", HashedPassword: "x", Role: models.RoleGroupLead}
	require.NoError(t, s.db.Create(user).Error)

	_, err := s.EditGroup(404, user, &EditGroupRequest{Name: "anything"})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGetUserGroupsScopedToOwner(t *testing.T) {
	s := NewGroupService(newTestDB(t))

	require.NoError(t, s.db.Create(&models.Group{UserID: 1, CreatorRole: models.RoleGroupLead, Name: "mine"}).Error)
	require.NoError(t, s.db.Create(&models.Group{UserID: 2, CreatorRole: models.RoleGroupLead, Name: "theirs"}).Error)

	groups, err := s.GetUserGroups(1)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "mine", groups[0].Name)
}

func TestDeleteGroup(t *testing.T) {
	s := NewGroupService(newTestDB(t))

	group := &models.Group{UserID: 1, CreatorRole: models.RoleGroupLead, Name: "doomed"}
	require.NoError(t, s.db.Create(group).Error)

	require.NoError(t, s.DeleteGroup(group.ID))
	assert.ErrorIs(t, s.DeleteGroup(group.ID), ErrGroupNotFound)

	_, err := s.GetGroup(group.ID)
	assert.ErrorIs(t, err, ErrGroupNotFound)
}
