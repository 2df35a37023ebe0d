// Package stats derives dashboard metrics from a set of application records.
//
// Compute is a pure aggregation: it never queries the store, so callers decide
// whether the input is a user's full record set or an already-filtered view.
// The rate definitions mirror the dashboard:
//
//   - response rate    = interviews / total
//   - acceptance rate  = accepted / interviews
//   - rejection rate   = rejections / total
//
// where "interviews" counts every status only reachable after an interview
// occurred. All rates are percentages rounded to one decimal and collapse to 0
// instead of dividing by zero.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/status"
)

// WeekdayBucket aggregates applications submitted on one weekday.
// Buckets are Sunday-first to match the dashboard's charting convention.
type WeekdayBucket struct {
	Weekday      string `json:"weekday"`
	Applications int    `json:"applications"`
	Responses    int    `json:"responses"`
}

// MonthBucket aggregates applications submitted in one calendar month.
type MonthBucket struct {
	Month        string `json:"month"` // "YYYY-MM"
	Applications int    `json:"applications"`
	Interviews   int    `json:"interviews"`
	Accepted     int    `json:"accepted"`
}

// Summary is the aggregate view the dashboard renders.
//
// ByStatus only contains statuses that occur at least once in the input;
// callers must not rely on zero-count entries being present.
type Summary struct {
	Total          int `json:"total"`
	InterviewCount int `json:"interview_count"`
	AcceptedCount  int `json:"accepted_count"`
	RejectedCount  int `json:"rejected_count"`

	ResponseRate   float64 `json:"response_rate"`
	AcceptanceRate float64 `json:"acceptance_rate"`
	RejectionRate  float64 `json:"rejection_rate"`

	// AverageResponseDays is the mean of (updated − created) in whole days,
	// over records whose status indicates the employer actually answered.
	AverageResponseDays int `json:"average_response_days"`

	ByStatus  map[status.Status]int `json:"by_status"`
	ByWeekday [7]WeekdayBucket      `json:"by_weekday"`
	ByMonth   []MonthBucket         `json:"by_month"`
}

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Compute aggregates apps into a Summary. The input is not mutated and may be
// empty, in which case every counter and rate is zero.
func Compute(apps []domain.Application) Summary {
	s := Summary{
		Total:    len(apps),
		ByStatus: make(map[status.Status]int, len(status.All)),
	}
	for i := range s.ByWeekday {
		s.ByWeekday[i].Weekday = weekdayNames[i]
	}

	var (
		respondedCount int
		respondedTotal time.Duration
		months         = make(map[string]*MonthBucket)
	)

	for i := range apps {
		app := &apps[i]
		st := status.Status(app.Status)

		s.ByStatus[st]++
		if status.ReachedInterview(st) {
			s.InterviewCount++
		}
		if st == status.Accepted {
			s.AcceptedCount++
		}
		if status.IsRejection(st) {
			s.RejectedCount++
		}
		if status.Responded(st) {
			respondedCount++
			respondedTotal += app.UpdatedAt.Sub(app.CreatedAt)
		}

		wd := int(app.AppliedAt.Weekday()) // Sunday = 0
		s.ByWeekday[wd].Applications++
		if status.ReachedInterview(st) {
			s.ByWeekday[wd].Responses++
		}

		key := app.AppliedAt.Format("2006-01")
		m := months[key]
		if m == nil {
			m = &MonthBucket{Month: key}
			months[key] = m
		}
		m.Applications++
		if status.ReachedInterview(st) {
			m.Interviews++
		}
		if st == status.Accepted {
			m.Accepted++
		}
	}

	s.ResponseRate = percent(s.InterviewCount, s.Total)
	s.AcceptanceRate = percent(s.AcceptedCount, s.InterviewCount)
	s.RejectionRate = percent(s.RejectedCount, s.Total)

	if respondedCount > 0 {
		mean := respondedTotal / time.Duration(respondedCount)
		s.AverageResponseDays = int(math.Round(mean.Hours() / 24))
	}

	s.ByMonth = make([]MonthBucket, 0, len(months))
	for _, m := range months {
		s.ByMonth = append(s.ByMonth, *m)
	}
	sort.Slice(s.ByMonth, func(i, j int) bool { return s.ByMonth[i].Month < s.ByMonth[j].Month })

	return s
}

// percent returns part/whole as a percentage rounded to one decimal, or 0
// when whole is zero.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}
