package schedule

import (
	"context"
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
)

type (
	ServiceDeps struct {
		Repo       Repository
		Rooms      RoomRepository
		Students   StudentRepository
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator
	}

	// Service is the error-valued entry point used by application code.
	// It validates schedules before they reach the repository and, when configured,
	// rejects double-booked rooms and students.
	Service struct {
		repo             Repository
		rooms            RoomRepository
		students         StudentRepository
		logger           core.Logger
		validate         *validator.Validate
		translator       ut.Translator
		enforceNoOverlap bool
	}
)

func NewService(deps ServiceDeps) *Service {
	svc := &Service{
		repo:       deps.Repo,
		rooms:      deps.Rooms,
		students:   deps.Students,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
	}
	if deps.Conf != nil {
		svc.enforceNoOverlap = deps.Conf.Schedule.EnforceNoOverlap
	}
	return svc
}

// Validate checks the schedule fields; the returned error is a *core.ValidationError.
func (svc *Service) Validate(s Schedule) error {
	if s == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "schedule", Error: "this field is required"})
	}
	hdr := s.Header()
	hdr.ID = core.CleanString(hdr.ID)
	hdr.Name = core.CleanString(hdr.Name)
	hdr.Description = core.CleanString(hdr.Description)
	hdr.Start = hdr.Start.UTC()
	hdr.End = hdr.End.UTC()
	return core.TranslateValidationErrors(svc.validate.Struct(s), svc.translator)
}

// Conflicts returns the other schedules booking the same room (ROOM) or the same student
// (STUDENT) during s.
func (svc *Service) Conflicts(ctx context.Context, s Schedule) ([]Schedule, error) {
	hdr := s.Header()
	var conflicts []Schedule

	switch v := s.(type) {
	case *RoomSchedule:
		for _, other := range svc.rooms.FindByRoomID(ctx, v.RoomID) {
			if other.ID != hdr.ID && other.Overlaps(hdr.Start, hdr.End) {
				conflicts = append(conflicts, other)
			}
		}
	case *StudentSchedule:
		for _, other := range svc.students.FindByStudentID(ctx, v.StudentID) {
			if other.ID != hdr.ID && other.Overlaps(hdr.Start, hdr.End) {
				conflicts = append(conflicts, other)
			}
		}
	default:
		return nil, ErrUnknownKind
	}
	return conflicts, nil
}

func (svc *Service) checkConflicts(ctx context.Context, s Schedule) error {
	if !svc.enforceNoOverlap {
		return nil
	}
	conflicts, err := svc.Conflicts(ctx, s)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		ids := make([]string, 0, len(conflicts))
		for _, c := range conflicts {
			ids = append(ids, c.Header().ID)
		}
		return errors.Wrap(ErrConflict, fmt.Sprintf("overlapping %s", strings.Join(ids, ", ")))
	}
	return nil
}

func (svc *Service) Get(ctx context.Context, id string) (Schedule, error) {
	s, ok := svc.repo.FindByID(ctx, core.CleanString(id))
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (svc *Service) Create(ctx context.Context, s Schedule) error {
	if err := svc.Validate(s); err != nil {
		return err
	}
	if err := svc.checkConflicts(ctx, s); err != nil {
		return err
	}
	if !svc.repo.Save(ctx, s) {
		return ErrNotSaved
	}
	svc.logger.Info(fmt.Sprintf("schedule %s created", s.Header().ID), s)
	return nil
}

func (svc *Service) Update(ctx context.Context, s Schedule) error {
	if err := svc.Validate(s); err != nil {
		return err
	}
	orig, err := svc.Get(ctx, s.Header().ID)
	if err != nil {
		return err
	}
	if orig.Kind() != s.Kind() {
		return ErrKindMismatch
	}
	if err := svc.checkConflicts(ctx, s); err != nil {
		return err
	}
	if !svc.repo.Update(ctx, s) {
		return ErrNotSaved
	}
	return nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	id = core.CleanString(id)
	if _, err := svc.Get(ctx, id); err != nil {
		return err
	}
	if !svc.repo.Delete(ctx, id) {
		return ErrNotSaved
	}
	svc.logger.Info(fmt.Sprintf("schedule %s deleted", id))
	return nil
}
