package daemons

import (
	"time"

	"github.com/jasonlvhit/gocron"

	"github.com/zsmartex/nftex/config"
	"github.com/zsmartex/nftex/jobs"
)

// CronJob runs every job once per interval until stopped.
type CronJob struct {
	Interval time.Duration
	Jobs     []jobs.Job

	scheduler *gocron.Scheduler
	stopped   chan bool
}

func NewCronJob(interval time.Duration, list ...jobs.Job) *CronJob {
	if interval < time.Second {
		interval = time.Second
	}

	return &CronJob{Interval: interval, Jobs: list}
}

func (c *CronJob) Start() {
	c.scheduler = gocron.NewScheduler()
	for _, job := range c.Jobs {
		c.scheduler.Every(uint64(c.Interval / time.Second)).Seconds().Do(job.Process)
	}

	config.Logger.Infof("[nftex.daemon] %d jobs every %s", len(c.Jobs), c.Interval)

	c.stopped = c.scheduler.Start()
}

func (c *CronJob) Stop() {
	if c.stopped == nil {
		return
	}

	c.stopped <- true
	c.scheduler.Clear()
	c.stopped = nil
}
