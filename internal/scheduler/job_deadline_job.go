package scheduler

import (
	"context"
	"time"

	"github.com/Greybash/ngo-service/internal/config"
	"github.com/Greybash/ngo-service/internal/logger"
	"github.com/Greybash/ngo-service/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// JobDeadlineJob 关闭截止日期已过的招聘岗位
type JobDeadlineJob struct {
	jobs   *logic.JobLogic
	config *config.Config
}

func NewJobDeadlineJob(jobs *logic.JobLogic, cfg *config.Config) *JobDeadlineJob {
	return &JobDeadlineJob{
		jobs:   jobs,
		config: cfg,
	}
}

func (j *JobDeadlineJob) GetName() string {
	return "job_deadline_closer"
}

func (j *JobDeadlineJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

func (j *JobDeadlineJob) Execute() {
	closed, err := j.jobs.CloseExpiredJobs(context.Background(), time.Now())
	if err != nil {
		logger.Error("Closing expired jobs failed: %v", err)
		return
	}
	if closed > 0 {
		logger.Info("Closed %d jobs past their deadline", closed)
	}
}
