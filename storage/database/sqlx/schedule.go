package sqlxrepos

import (
	"context"
	"fmt"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/tutorhub/core"
	"github.com/trezcool/tutorhub/core/schedule"
	"github.com/trezcool/tutorhub/storage/database"
)

// scheduleRepository owns the base "schedules" table and dispatches the variant
// record to the extension registered for the row's discriminator.
type scheduleRepository struct {
	db     core.DB
	logger core.Logger

	mu         sync.RWMutex
	extensions map[schedule.Kind]schedule.Extension
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db core.DB, logger core.Logger, exts ...schedule.Extension) *scheduleRepository {
	repo := &scheduleRepository{
		db:         db,
		logger:     logger,
		extensions: make(map[schedule.Kind]schedule.Extension, len(exts)),
	}
	for _, ext := range exts {
		repo.Register(ext)
	}
	return repo
}

func (repo *scheduleRepository) Register(ext schedule.Extension) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.extensions[ext.Kind()] = ext
}

func (repo *scheduleRepository) extension(kind schedule.Kind) (schedule.Extension, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	if ext, ok := repo.extensions[kind]; ok {
		return ext, nil
	}
	return nil, errors.Wrapf(schedule.ErrUnknownKind, "%q", kind)
}

func (repo *scheduleRepository) selectBase(exec core.DBExecutor) sq.SelectBuilder {
	return builder(exec).Select(scheduleColumns...).From(tableSchedules + " s")
}

func (repo *scheduleRepository) getBase(ctx context.Context, exec core.DBExecutor, id string) (scheduleRow, error) {
	var row scheduleRow
	err := getRow(ctx, exec, &row, repo.selectBase(exec).Where(sq.Eq{"s.id": id}))
	if err != nil {
		return scheduleRow{}, trapNoRowsErr(err, "finding schedule by ID")
	}
	return row, nil
}

// resolve loads the extension record of row and returns the composed variant.
func (repo *scheduleRepository) resolve(ctx context.Context, exec core.DBExecutor, row scheduleRow) (schedule.Schedule, error) {
	ext, err := repo.extension(schedule.Kind(row.ScheduleType))
	if err != nil {
		return nil, err
	}
	s, err := ext.Load(ctx, exec, row.base())
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s extension", row.ScheduleType)
	}
	return s, nil
}

// query resolves every base row matching where; rows that cannot be resolved are skipped.
func (repo *scheduleRepository) query(ctx context.Context, where sq.Sqlizer) []schedule.Schedule {
	q := repo.selectBase(repo.db).OrderBy(orderBy(defaultOrdering))
	if where != nil {
		q = q.Where(where)
	}

	var rows []scheduleRow
	if err := selectRows(ctx, repo.db, &rows, q); err != nil {
		repo.logger.Error("querying schedules", errors.Wrap(err, "querying schedules"))
		return []schedule.Schedule{}
	}

	schedules := make([]schedule.Schedule, 0, len(rows))
	for _, row := range rows {
		s, err := repo.resolve(ctx, repo.db, row)
		if err != nil {
			repo.logger.Warn(fmt.Sprintf("skipping schedule %s", row.ID), err)
			continue
		}
		schedules = append(schedules, s)
	}
	return schedules
}

func (repo *scheduleRepository) FindByID(ctx context.Context, id string) (schedule.Schedule, bool) {
	row, err := repo.getBase(ctx, repo.db, id)
	if err != nil {
		if err != schedule.ErrNotFound {
			repo.logger.Error(fmt.Sprintf("finding schedule %s", id), err)
		}
		return nil, false
	}

	s, err := repo.resolve(ctx, repo.db, row)
	if err != nil {
		repo.logger.Warn(fmt.Sprintf("schedule %s cannot be resolved", id), err)
		return nil, false
	}
	return s, true
}

func (repo *scheduleRepository) FindAll(ctx context.Context) []schedule.Schedule {
	return repo.query(ctx, nil)
}

func (repo *scheduleRepository) FindByTimeRange(ctx context.Context, start, end time.Time) []schedule.Schedule {
	return repo.query(ctx, overlapsExpr("s", start, end))
}

func (repo *scheduleRepository) FindByName(ctx context.Context, substring string) []schedule.Schedule {
	return repo.query(ctx, containsExpr(repo.db, "s.name", substring))
}

func (repo *scheduleRepository) insertBase(ctx context.Context, exec core.DBExecutor, s schedule.Schedule) error {
	row := newScheduleRow(s)
	q := builder(exec).
		Insert(tableSchedules).
		Columns("id", "name", "description", "start_time", "end_time", "schedule_type").
		Values(row.ID, row.Name, row.Description, row.StartTime, row.EndTime, row.ScheduleType)
	_, err := execAffected(ctx, exec, q)
	return errors.Wrap(err, "inserting schedule")
}

// updateBase never changes the discriminator: a schedule of another kind matches no row.
func (repo *scheduleRepository) updateBase(ctx context.Context, exec core.DBExecutor, s schedule.Schedule) (int64, error) {
	row := newScheduleRow(s)
	q := builder(exec).
		Update(tableSchedules).
		Set("name", row.Name).
		Set("description", row.Description).
		Set("start_time", row.StartTime).
		Set("end_time", row.EndTime).
		Where(sq.Eq{"id": row.ID, "schedule_type": row.ScheduleType})
	n, err := execAffected(ctx, exec, q)
	return n, errors.Wrap(err, "updating schedule")
}

func (repo *scheduleRepository) deleteBase(ctx context.Context, exec core.DBExecutor, id string) error {
	n, err := execAffected(ctx, exec, builder(exec).Delete(tableSchedules).Where(sq.Eq{"id": id}))
	return expectAffected(n, err, "deleting schedule")
}

// Save inserts the base row then the extension row in one unit of work.
func (repo *scheduleRepository) Save(ctx context.Context, s schedule.Schedule) bool {
	if s == nil {
		return false
	}
	id := s.Header().ID

	err := database.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		if err := repo.insertBase(ctx, tx, s); err != nil {
			return err
		}
		ext, err := repo.extension(s.Kind())
		if err != nil {
			return err
		}
		return errors.Wrapf(ext.Insert(ctx, tx, s), "inserting %s extension", s.Kind())
	})
	if err != nil {
		repo.logger.Error(fmt.Sprintf("saving schedule %s: rolled back", id), err, s)
		return false
	}
	return true
}

// Update rewrites the base row then the extension row in one unit of work.
// A missing base row is only a warning, but a missing extension row fails the whole update,
// which is always the case when the base row is missing too.
func (repo *scheduleRepository) Update(ctx context.Context, s schedule.Schedule) bool {
	if s == nil {
		return false
	}
	id := s.Header().ID

	err := database.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		n, err := repo.updateBase(ctx, tx, s)
		if err != nil {
			return err
		}
		if n == 0 {
			repo.logger.Warn(fmt.Sprintf("updating schedule %s: no %s base row", id, s.Kind()))
		}
		ext, err := repo.extension(s.Kind())
		if err != nil {
			return err
		}
		return errors.Wrapf(ext.Update(ctx, tx, s), "updating %s extension", s.Kind())
	})
	if err != nil {
		repo.logger.Error(fmt.Sprintf("updating schedule %s: rolled back", id), err, s)
		return false
	}
	return true
}

// Delete removes the extension row then the base row in one unit of work.
func (repo *scheduleRepository) Delete(ctx context.Context, id string) bool {
	err := database.RunInTx(ctx, repo.db, func(tx core.DBExecutor) error {
		row, err := repo.getBase(ctx, tx, id)
		if err != nil {
			return err
		}
		ext, err := repo.extension(schedule.Kind(row.ScheduleType))
		if err != nil {
			return err
		}
		if err = ext.Delete(ctx, tx, id); err != nil {
			return errors.Wrapf(err, "deleting %s extension", row.ScheduleType)
		}
		return repo.deleteBase(ctx, tx, id)
	})

	switch errors.Cause(err) {
	case nil:
		return true
	case schedule.ErrNotFound:
		repo.logger.Debug(fmt.Sprintf("deleting schedule %s: not found", id))
	case schedule.ErrUnknownKind:
		repo.logger.Warn(fmt.Sprintf("deleting schedule %s: rolled back", id), err)
	default:
		repo.logger.Error(fmt.Sprintf("deleting schedule %s: rolled back", id), err)
	}
	return false
}
