package services

import (
	"errors"
	"time"

	"sessionpulse/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// GroupStatsPageSize is the fixed page size for the cross-group listing.
const GroupStatsPageSize = 10

// monthlyStatsWindow is how many months the rolling time series covers.
const monthlyStatsWindow = 12

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// AnswerVector holds one column-wise average per answer dimension, in d1..d8
// order. Absence of data is a nil *AnswerVector, never a zero vector.
type AnswerVector [models.AnswerCount]float64

// AverageAnswers computes the per-dimension mean across results. Returns nil
// when there is nothing to average.
func AverageAnswers(results []models.Result) *AnswerVector {
	if len(results) == 0 {
		return nil
	}

	var sums AnswerVector
	for _, r := range results {
		for i, v := range r.Answers() {
			sums[i] += float64(v)
		}
	}

	var avg AnswerVector
	for i := range sums {
		avg[i] = sums[i] / float64(len(results))
	}
	return &avg
}

// AverageOfVector collapses a vector of per-dimension averages into a single
// scalar summary.
func AverageOfVector(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// TotalAverage computes the column-wise mean over already-averaged group
// vectors, skipping groups with no data. Each group contributes equal weight
// regardless of how many participants it had.
func TotalAverage(vectors []*AnswerVector) AnswerVector {
	var total AnswerVector
	n := 0
	for _, v := range vectors {
		if v == nil {
			continue
		}
		for i := range v {
			total[i] += v[i]
		}
		n++
	}
	if n == 0 {
		return total
	}
	for i := range total {
		total[i] /= float64(n)
	}
	return total
}

type GroupStats struct {
	Group        models.Group    `json:"group"`
	Owner        *models.User    `json:"owner,omitempty"`
	StartResults []models.Result `json:"start_results"`
	EndResults   []models.Result `json:"end_results"`
	StartAverage *AnswerVector   `json:"start_average"`
	EndAverage   *AnswerVector   `json:"end_average"`
}

// GroupStats returns one group's raw and averaged start/end results along
// with the owning user's identity.
func (s *StatsService) GroupStats(groupID uint) (*GroupStats, error) {
	var group models.Group
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	stats := &GroupStats{
		Group:        group,
		StartResults: []models.Result{},
		EndResults:   []models.Result{},
	}

	var owner models.User
	if err := s.db.First(&owner, group.UserID).Error; err == nil {
		stats.Owner = &owner
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if group.StartPollCode != nil {
		if err := s.db.Where("poll_code = ? AND is_start = ?", *group.StartPollCode, true).
			Find(&stats.StartResults).Error; err != nil {
			return nil, err
		}
	}
	if group.EndPollCode != nil {
		if err := s.db.Where("poll_code = ? AND is_start = ?", *group.EndPollCode, false).
			Find(&stats.EndResults).Error; err != nil {
			return nil, err
		}
	}

	stats.StartAverage = AverageAnswers(stats.StartResults)
	stats.EndAverage = AverageAnswers(stats.EndResults)

	return stats, nil
}

type GroupStatsPage struct {
	Page        int           `json:"page"`
	TotalPages  int           `json:"total_pages"`
	TotalGroups int64         `json:"total_groups"`
	Groups      []*GroupStats `json:"groups"`
}

// PagedGroupStats lists stats for groups created by owners of the given
// role, newest first. An out-of-range page index is clamped to the nearest
// valid page rather than returning an empty slice.
func (s *StatsService) PagedGroupStats(role string, page int) (*GroupStatsPage, error) {
	var total int64
	if err := s.db.Model(&models.Group{}).
		Where("creator_role = ?", role).
		Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + GroupStatsPageSize - 1) / GroupStatsPageSize)
	if page < 0 {
		page = 0
	}
	if totalPages > 0 && page > totalPages-1 {
		page = totalPages - 1
	}
	if totalPages == 0 {
		page = 0
	}

	var groups []models.Group
	if err := s.db.Where("creator_role = ?", role).
		Order("created_at DESC").
		Offset(page * GroupStatsPageSize).
		Limit(GroupStatsPageSize).
		Find(&groups).Error; err != nil {
		return nil, err
	}

	stats, err := s.statsForGroups(groups)
	if err != nil {
		return nil, err
	}

	return &GroupStatsPage{
		Page:        page,
		TotalPages:  totalPages,
		TotalGroups: total,
		Groups:      stats,
	}, nil
}

type AggregatedStats struct {
	GroupCount   int          `json:"group_count"`
	StartAverage AnswerVector `json:"start_average"`
	EndAverage   AnswerVector `json:"end_average"`
	StartSummary float64      `json:"start_summary"`
	EndSummary   float64      `json:"end_summary"`
}

// AggregatedGroupStats averages averages across every group owned by the
// given role. Only groups with both a start and an end average enter the
// totals, keeping the pre/post comparison honest.
func (s *StatsService) AggregatedGroupStats(role string) (*AggregatedStats, error) {
	var groups []models.Group
	if err := s.db.Where("creator_role = ?", role).Find(&groups).Error; err != nil {
		return nil, err
	}

	stats, err := s.statsForGroups(groups)
	if err != nil {
		return nil, err
	}

	var startVectors, endVectors []*AnswerVector
	paired := 0
	for _, gs := range stats {
		if gs.StartAverage == nil || gs.EndAverage == nil {
			continue
		}
		startVectors = append(startVectors, gs.StartAverage)
		endVectors = append(endVectors, gs.EndAverage)
		paired++
	}

	startTotal := TotalAverage(startVectors)
	endTotal := TotalAverage(endVectors)

	return &AggregatedStats{
		GroupCount:   paired,
		StartAverage: startTotal,
		EndAverage:   endTotal,
		StartSummary: AverageOfVector(startTotal[:]),
		EndSummary:   AverageOfVector(endTotal[:]),
	}, nil
}

type MonthBucket struct {
	Month        string `json:"month"` // YYYY-MM
	GroupCount   int    `json:"group_count"`
	Participants int    `json:"participants"`
}

// MonthlyGroupStats buckets groups into a 12-month rolling series by the
// month their start poll opened, oldest first. Participants counts submitted
// start results per group.
func (s *StatsService) MonthlyGroupStats(role string) ([]MonthBucket, error) {
	var groups []models.Group
	if err := s.db.Where("creator_role = ?", role).Find(&groups).Error; err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(monthlyStatsWindow - 1), 0)

	buckets := make([]MonthBucket, monthlyStatsWindow)
	index := make(map[string]int, monthlyStatsWindow)
	for i := range buckets {
		month := first.AddDate(0, i, 0).Format("2006-01")
		buckets[i] = MonthBucket{Month: month}
		index[month] = i
	}

	for _, group := range groups {
		if group.StartPollDate == nil {
			continue
		}
		i, ok := index[group.StartPollDate.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		buckets[i].GroupCount++

		if group.StartPollCode != nil {
			var count int64
			if err := s.db.Model(&models.Result{}).
				Where("poll_code = ? AND is_start = ?", *group.StartPollCode, true).
				Count(&count).Error; err != nil {
				return nil, err
			}
			buckets[i].Participants += int(count)
		}
	}

	return buckets, nil
}

// statsForGroups fans out one stat lookup per group and waits for all of
// them. Any single failure aborts the whole aggregate.
func (s *StatsService) statsForGroups(groups []models.Group) ([]*GroupStats, error) {
	stats := make([]*GroupStats, len(groups))
	var eg errgroup.Group
	for i, group := range groups {
		i, group := i, group
		eg.Go(func() error {
			gs, err := s.GroupStats(group.ID)
			if err != nil {
				return err
			}
			stats[i] = gs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
