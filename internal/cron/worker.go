package cron

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"

	"ziprates/internal/alerting"
	"ziprates/internal/config"
	"ziprates/internal/metrics"
	"ziprates/internal/notification"
	"ziprates/internal/rates"
	"ziprates/internal/storage"
)

const (
	jobName = "refresh_datasets"
	// Advisory lock key for the refresh job. With the postgrespool driver
	// only one replica runs the refresh at a time.
	lockKey int64 = 42
)

// Run starts the dataset refresh worker. The interval comes from
// ZIPRATES_CRON_INTERVAL_SECONDS (integer seconds or a cron expression)
// and can be overridden at runtime through the refresh_interval_seconds
// setting in storage.
func Run(ctx context.Context, cfg config.Config) error {
	driver := cfg.DBDriver
	if driver == "" {
		driver = "postgrespool"
	}
	if driver == "memory" {
		return fmt.Errorf("cron worker needs a persistent storage driver (got %q)", driver)
	}

	st, err := storage.Open(ctx, storage.Config{Driver: driver, DSN: cfg.DBDSN})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.Close()

	svc := rates.NewServiceWithStorage(cfg.RatesConfig(), st)
	alerter := alerting.NewAlerter(alerting.DefaultAlertConfig())
	notifier := notification.NewService(st)

	intervalSetting := "3600"
	if raw := os.Getenv("ZIPRATES_CRON_INTERVAL_SECONDS"); raw != "" {
		intervalSetting = raw
	}
	if val, err := st.GetSetting(ctx, "refresh_interval_seconds"); err == nil && val != "" {
		intervalSetting = val
	}

	// Control loop; the actual schedule is computed from the setting so
	// runtime changes take effect without a restart.
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	nextRun := time.Now()

	log.Printf("cron worker starting, setting=%q driver=%s", intervalSetting, driver)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if val, err := st.GetSetting(ctx, "refresh_interval_seconds"); err == nil && val != "" && val != intervalSetting {
				log.Printf("cron: interval updated from %q to %q", intervalSetting, val)
				intervalSetting = val
				nextRun = nextRunTime(intervalSetting, time.Now())
			}

			if time.Now().Before(nextRun) {
				continue
			}

			started := time.Now()

			gotLock, err := st.AcquireAdvisoryLock(ctx, lockKey)
			if err != nil {
				log.Printf("cron: acquire advisory lock failed: %v", err)
				metrics.UpdateJobMetrics(jobName, started, err)
				nextRun = nextRunTime(intervalSetting, time.Now())
				continue
			}
			if !gotLock {
				log.Printf("cron: advisory lock held by another worker, skipping run")
				nextRun = nextRunTime(intervalSetting, time.Now())
				continue
			}

			var runErr error
			func() {
				defer func() {
					if _, err := st.ReleaseAdvisoryLock(ctx, lockKey); err != nil {
						log.Printf("cron: release advisory lock failed: %v", err)
					}
				}()
				_, runErr = svc.Reload(ctx)
			}()

			metrics.UpdateJobMetrics(jobName, started, runErr)
			dur := time.Since(started)
			errMsg := ""
			if runErr != nil {
				errMsg = runErr.Error()
			}
			job := storage.ScheduledJob{
				Name:           jobName,
				LastRunAt:      started,
				LastDurationMs: dur.Milliseconds(),
				LastSuccess:    runErr == nil,
				LastError:      errMsg,
			}
			if err := st.UpdateScheduledJob(ctx, job); err != nil {
				log.Printf("cron: update scheduled_jobs failed: %v", err)
			}

			if runErr != nil {
				log.Printf("cron: job %s completed with error: %v (duration=%s)", jobName, runErr, dur)
				notifyFailure(ctx, alerter, notifier, runErr, dur, started)
			} else {
				log.Printf("cron: job %s completed successfully (duration=%s)", jobName, dur)
			}

			nextRun = nextRunTime(intervalSetting, time.Now())
		}
	}
}

// nextRunTime computes the next run from the interval setting, which is
// either integer seconds or a standard cron expression.
func nextRunTime(setting string, lastRun time.Time) time.Time {
	if v, err := strconv.Atoi(setting); err == nil && v > 0 {
		return lastRun.Add(time.Duration(v) * time.Second)
	}
	if sched, err := cron.ParseStandard(setting); err == nil {
		return sched.Next(lastRun)
	}
	return lastRun.Add(time.Hour)
}

func notifyFailure(ctx context.Context, alerter *alerting.Alerter, notifier *notification.Service, runErr error, dur time.Duration, started time.Time) {
	alert := alerting.RefreshAlert{
		JobName:   jobName,
		Error:     runErr.Error(),
		Duration:  dur,
		Timestamp: started,
	}
	if err := alerter.SendRefreshAlert(ctx, alert); err != nil {
		log.Printf("cron: send alert failed: %v", err)
	}

	emailCfg, err := notifier.GetConfig(ctx)
	if err != nil || emailCfg == nil || !emailCfg.Enabled || emailCfg.Recipients == "" {
		return
	}
	subject := "ziprates: dataset refresh failed"
	body := fmt.Sprintf("The %s job failed at %s after %s:<br><pre>%s</pre>",
		jobName, started.Format(time.RFC3339), dur.Round(time.Millisecond), runErr.Error())
	if err := notifier.SendEmail(ctx, emailCfg.Recipients, subject, body); err != nil {
		log.Printf("cron: send email failed: %v", err)
	}
}
