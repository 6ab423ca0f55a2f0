package service

import (
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/report"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"
)

// ReportService exposes the read side: reports and the activity feed
type ReportService interface {
	Monthly(month time.Month, year int) report.MonthlyReport
	Years() []int
	Logs() []domain.ActivityLog
	// CurrentPeriod is the month and year the views open on
	CurrentPeriod() (time.Month, int)
}

type reportService struct {
	store    *store.Store
	location *time.Location
	clock    func() time.Time
}

// NewReportService creates a new instance of ReportService
func NewReportService(s *store.Store, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{store: s, location: loc, clock: time.Now}
}

func (s *reportService) Monthly(month time.Month, year int) report.MonthlyReport {
	return report.BuildMonthlyReport(s.store.Sales(), month, year, s.location)
}

func (s *reportService) Years() []int {
	return report.AvailableYears(s.clock().In(s.location))
}

func (s *reportService) Logs() []domain.ActivityLog {
	return s.store.Logs()
}

func (s *reportService) CurrentPeriod() (time.Month, int) {
	now := s.clock().In(s.location)
	return now.Month(), now.Year()
}
