package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workstudy/internal/cache"
	"workstudy/internal/engine"
	"workstudy/internal/metrics"
	"workstudy/internal/queue"
)

// Store is the data access the service needs; *Repository satisfies
// it, tests swap in a fake.
type Store interface {
	InsertEvent(ctx context.Context, ev engine.ClockEvent) (engine.ClockEvent, error)
	UpdateEvent(ctx context.Context, id string, occurredAt time.Time, kind engine.EventKind) (*engine.ClockEvent, error)
	DeleteEvent(ctx context.Context, id string) (*engine.ClockEvent, error)
	ListEvents(ctx context.Context, studentID, termID string) ([]engine.ClockEvent, error)
	ListEventsBetween(ctx context.Context, from, to time.Time) ([]engine.ClockEvent, error)
	GetAvailability(ctx context.Context, studentID, termID string) (map[string][]string, error)
	GetTerm(ctx context.Context, termID string) (*engine.Term, error)
	GetShiftRecord(ctx context.Context, studentID, termID, date string) (*engine.ShiftRecord, error)
}

// ErrTermNotFound is returned when a report references an unknown term.
var ErrTermNotFound = errors.New("term not found")

// Service runs the reconciliation engine over stored data and keeps
// the report cache honest across clock-event mutations.
type Service struct {
	store   Store
	reports *cache.Reports
	cal     *engine.Calendar
	q       queue.Queue
}

// NewService wires the service. reports and q may be nil in tests;
// both degrade to no-ops.
func NewService(store Store, reports *cache.Reports, cal *engine.Calendar, q queue.Queue) *Service {
	if cal == nil {
		cal = engine.NewCalendar("")
	}
	return &Service{store: store, reports: reports, cal: cal, q: q}
}

// Calendar exposes the reference-zone calendar for callers that
// format instants at the boundary.
func (s *Service) Calendar() *engine.Calendar { return s.cal }

// RecordSwipe ingests one clock event. at is the observed instant;
// callers pass their "now" explicitly.
func (s *Service) RecordSwipe(ctx context.Context, studentID, termID string, kind engine.EventKind, at time.Time, manual bool) (engine.ClockEvent, error) {
	if studentID == "" || termID == "" {
		return engine.ClockEvent{}, errors.New("student and term required")
	}
	if kind != engine.KindIn && kind != engine.KindOut {
		return engine.ClockEvent{}, fmt.Errorf("unknown swipe kind %q", kind)
	}
	ev := engine.ClockEvent{
		StudentID: studentID,
		TermID:    termID,
		Timestamp: at.UTC(),
		Kind:      kind,
		Manual:    manual,
	}
	inserted, err := s.store.InsertEvent(ctx, ev)
	if err != nil {
		return engine.ClockEvent{}, err
	}
	metrics.Swipes.WithLabelValues(string(kind)).Inc()
	s.staled(ctx, studentID, termID)
	return inserted, nil
}

// AmendEvent applies a manual edit to an existing event.
func (s *Service) AmendEvent(ctx context.Context, id string, occurredAt time.Time, kind engine.EventKind) (*engine.ClockEvent, error) {
	if kind != engine.KindIn && kind != engine.KindOut {
		return nil, fmt.Errorf("unknown swipe kind %q", kind)
	}
	ev, err := s.store.UpdateEvent(ctx, id, occurredAt.UTC(), kind)
	if err != nil || ev == nil {
		return ev, err
	}
	s.staled(ctx, ev.StudentID, ev.TermID)
	return ev, nil
}

// RemoveEvent deletes an event by id.
func (s *Service) RemoveEvent(ctx context.Context, id string) (*engine.ClockEvent, error) {
	ev, err := s.store.DeleteEvent(ctx, id)
	if err != nil || ev == nil {
		return ev, err
	}
	s.staled(ctx, ev.StudentID, ev.TermID)
	return ev, nil
}

// Events lists a student/term's raw clock events.
func (s *Service) Events(ctx context.Context, studentID, termID string) ([]engine.ClockEvent, error) {
	return s.store.ListEvents(ctx, studentID, termID)
}

// Days reconciles the dates in [from, to] for one student/term.
func (s *Service) Days(ctx context.Context, studentID, termID, from, to string) ([]engine.DaySummary, error) {
	key := "days:" + from + ":" + to
	var days []engine.DaySummary
	if s.cached(ctx, studentID, termID, key, &days) {
		return days, nil
	}
	events, sched, term, err := s.load(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	days = s.cal.DayRange(from, to, events, sched, *term)
	metrics.Reconciliations.WithLabelValues("days").Inc()
	s.keep(ctx, studentID, termID, key, days)
	return days, nil
}

// Weeks builds the term's Monday-Sunday week summaries.
func (s *Service) Weeks(ctx context.Context, studentID, termID string) ([]engine.WeekSummary, error) {
	var weeks []engine.WeekSummary
	if s.cached(ctx, studentID, termID, "weeks", &weeks) {
		return weeks, nil
	}
	events, sched, term, err := s.load(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	weeks = s.cal.WeekSummaries(events, sched, *term)
	metrics.Reconciliations.WithLabelValues("weeks").Inc()
	s.keep(ctx, studentID, termID, "weeks", weeks)
	return weeks, nil
}

// Months builds the term's calendar-month summaries.
func (s *Service) Months(ctx context.Context, studentID, termID string) ([]engine.MonthSummary, error) {
	var months []engine.MonthSummary
	if s.cached(ctx, studentID, termID, "months", &months) {
		return months, nil
	}
	events, sched, term, err := s.load(ctx, studentID, termID)
	if err != nil {
		return nil, err
	}
	months = s.cal.MonthSummaries(events, sched, *term)
	metrics.Reconciliations.WithLabelValues("months").Inc()
	s.keep(ctx, studentID, termID, "months", months)
	return months, nil
}

// Punctuality classifies the term's worked shifts.
func (s *Service) Punctuality(ctx context.Context, studentID, termID string) (engine.PunctualityCounts, error) {
	var counts engine.PunctualityCounts
	if s.cached(ctx, studentID, termID, "punctuality", &counts) {
		return counts, nil
	}
	events, sched, term, err := s.load(ctx, studentID, termID)
	if err != nil {
		return engine.PunctualityCounts{}, err
	}
	counts = s.cal.Punctuality(term.Start, term.End, events, sched, *term)
	metrics.Reconciliations.WithLabelValues("punctuality").Inc()
	s.keep(ctx, studentID, termID, "punctuality", counts)
	return counts, nil
}

// Live resolves the student's status at now. Never cached: the answer
// changes minute to minute.
func (s *Service) Live(ctx context.Context, studentID, termID string, now time.Time) (engine.LiveStatus, error) {
	events, sched, _, err := s.load(ctx, studentID, termID)
	if err != nil {
		return engine.LiveStatus{}, err
	}
	today := s.cal.DayKey(now)
	record, err := s.store.GetShiftRecord(ctx, studentID, termID, today)
	if err != nil {
		return engine.LiveStatus{}, err
	}
	todayEvents := s.cal.GroupByDay(events)[today]
	return s.cal.ResolveLive(now, record, todayEvents, sched), nil
}

// Warm recomputes the heavyweight reports into cache; the worker runs
// it after a mutation message.
func (s *Service) Warm(ctx context.Context, studentID, termID string) error {
	if _, err := s.Weeks(ctx, studentID, termID); err != nil {
		return err
	}
	if _, err := s.Months(ctx, studentID, termID); err != nil {
		return err
	}
	_, err := s.Punctuality(ctx, studentID, termID)
	return err
}

// CloseOpenShifts inserts auto clock-outs for every clock-in left open
// on now's reference-zone day, stamped at now. Returns how many were
// closed. The caller owns once-per-day scheduling.
func (s *Service) CloseOpenShifts(ctx context.Context, now time.Time) (int, error) {
	from, to := s.dayBoundsUTC(now)
	events, err := s.store.ListEventsBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}

	type key struct{ student, term string }
	byStudent := make(map[key][]engine.ClockEvent)
	for _, ev := range events {
		k := key{ev.StudentID, ev.TermID}
		byStudent[k] = append(byStudent[k], ev)
	}

	closed := 0
	for k, evs := range byStudent {
		for _, shift := range s.cal.PairShifts(evs) {
			if shift.Complete() {
				continue
			}
			out := engine.ClockEvent{
				StudentID:    k.student,
				TermID:       k.term,
				Timestamp:    now.UTC(),
				Kind:         engine.KindOut,
				AutoClockOut: true,
			}
			if _, err := s.store.InsertEvent(ctx, out); err != nil {
				return closed, err
			}
			closed++
			metrics.AutoClockOuts.Inc()
			s.staled(ctx, k.student, k.term)
		}
	}
	return closed, nil
}

// load gathers the three engine inputs for one student/term.
func (s *Service) load(ctx context.Context, studentID, termID string) ([]engine.ClockEvent, engine.WeekSchedule, *engine.Term, error) {
	term, err := s.store.GetTerm(ctx, termID)
	if err != nil {
		return nil, nil, nil, err
	}
	if term == nil {
		return nil, nil, nil, ErrTermNotFound
	}
	events, err := s.store.ListEvents(ctx, studentID, termID)
	if err != nil {
		return nil, nil, nil, err
	}
	template, err := s.store.GetAvailability(ctx, studentID, termID)
	if err != nil {
		return nil, nil, nil, err
	}
	return events, engine.ParseWeek(template), term, nil
}

// dayBoundsUTC returns the UTC instants bounding now's reference-zone
// day.
func (s *Service) dayBoundsUTC(now time.Time) (time.Time, time.Time) {
	local := now.In(s.cal.Location())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.cal.Location())
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

func (s *Service) cached(ctx context.Context, studentID, termID, key string, dest any) bool {
	if s.reports == nil {
		return false
	}
	if s.reports.Get(ctx, studentID, termID, key, dest) {
		metrics.CacheHits.Inc()
		return true
	}
	metrics.CacheMisses.Inc()
	return false
}

func (s *Service) keep(ctx context.Context, studentID, termID, key string, value any) {
	if s.reports == nil {
		return
	}
	_ = s.reports.Set(ctx, studentID, termID, key, value)
}

// staled drops cached reports and nudges the worker to rebuild them.
func (s *Service) staled(ctx context.Context, studentID, termID string) {
	if s.reports != nil {
		_ = s.reports.Invalidate(ctx, studentID, termID)
	}
	if s.q != nil {
		_ = s.q.Publish(ctx, queue.Recompute(studentID, termID))
	}
}
