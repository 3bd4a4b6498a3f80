package background

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"dispatch/pkg/logger"
)

// Task - периодическая фоновая задача.
type Task interface {
	// Interval возвращает период между запусками.
	Interval() time.Duration

	// Run выполняет одну итерацию задачи.
	Run(context.Context) error

	// Name возвращает имя задачи для логов.
	Name() string
}

type taskLogger interface {
	Info(msg string, fields ...logger.Field)
	Warn(msg string, fields ...logger.Field)
	Error(msg string, fields ...logger.Field)
	With(fields ...logger.Field) logger.Logger
}

// Worker гоняет набор фоновых задач по тикеру.
type Worker struct {
	log   taskLogger
	tasks []Task
}

// New выполняет прогрев: каждая задача запускается один раз синхронно,
// чтобы ошибки инициализации всплыли сразу, а не в фоне. Если прогрев
// прошел - задачи уходят в периодические горутины до отмены контекста.
func New(ctx context.Context, log taskLogger, tasks []Task) (*Worker, error) {
	w := &Worker{
		log:   log,
		tasks: tasks,
	}
	if len(tasks) == 0 {
		return w, nil
	}

	warmup, warmupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		warmup.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("warmup panic: %v\n%s", r, debug.Stack())
				}
			}()
			log.Info("task warmup", logger.NewField("task", task.Name()))
			return task.Run(warmupCtx)
		})
	}
	if err := warmup.Wait(); err != nil {
		return nil, fmt.Errorf("task warmup: %w", err)
	}

	for _, task := range tasks {
		go w.loop(ctx, task)
	}
	return w, nil
}

func (w *Worker) loop(ctx context.Context, task Task) {
	interval := task.Interval()
	if interval <= 0 {
		w.log.Warn("non-positive interval, task disabled",
			logger.NewField("task", task.Name()),
			logger.NewField("interval", interval),
		)
		return
	}

	w.log.Info("task scheduled",
		logger.NewField("task", task.Name()),
		logger.NewField("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Warn("task stopped", logger.NewField("task", task.Name()))
			return
		case <-ticker.C:
			w.runOnce(ctx, task)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context, task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("task panic",
				logger.NewField("task", task.Name()),
				logger.NewField("recover", r),
				logger.NewField("stack", debug.Stack()),
			)
		}
	}()

	if err := task.Run(ctx); err != nil {
		w.log.Error("task failed",
			logger.NewField("task", task.Name()),
			logger.NewField("error", err),
		)
	}
}
