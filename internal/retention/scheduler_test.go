package retention_test

import (
	"context"
	"errors"
	"time"

	"basegraph.app/courier/common/clock"
	"basegraph.app/courier/internal/model"
	"basegraph.app/courier/internal/retention"
	"basegraph.app/courier/internal/store/storetest"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Scheduler", func() {
	var (
		ctx   context.Context
		mem   *storetest.Memory
		tx    *memTx
		clk   *clock.Fake
		now   time.Time
		sched *retention.Scheduler
	)

	newScheduler := func(cfg retention.SchedulerConfig) *retention.Scheduler {
		metrics := retention.NewMetrics(prometheus.NewRegistry())
		purger := retention.NewPurger(tx, nil, nil, clk, sequence(1), metrics, retention.PurgerConfig{})
		s, err := retention.NewScheduler(purger, cfg, clk, metrics)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	BeforeEach(func() {
		ctx = context.Background()
		mem = storetest.New()
		tx = &memTx{mem: mem}
		now = time.Date(2026, 6, 1, 3, 0, 0, 0, time.UTC)
		clk = clock.NewFake(now)

		mem.SeedThread(model.Thread{ID: 1, ChannelType: model.ChannelTypeDirect, RetentionPolicy: "standard", RetentionDays: 365, UpdatedAt: now})
		mem.SeedMessage(model.Message{ID: 10, ThreadID: 1, MessageType: model.MessageTypeText, Body: "old", CreatedAt: now.Add(-400 * day)})
	})

	It("runs purge and both housekeeping passes in one cycle", func() {
		sched = newScheduler(retention.SchedulerConfig{})

		report, ran := sched.Tick(ctx)
		Expect(ran).To(BeTrue())
		Expect(report.RunID).NotTo(BeEmpty())
		Expect(report.PurgeError).To(BeEmpty())
		Expect(report.Purge.TotalDeleted).To(Equal(1))
		Expect(report.Archive.OK).To(BeTrue())
		Expect(report.GracePurge.OK).To(BeTrue())

		audits := mem.Audits()
		Expect(audits).To(HaveLen(1))
		Expect(audits[0].RunID).To(Equal(report.RunID))

		status := sched.Status()
		Expect(status.LastRun).To(Equal(report))
		Expect(status.TotalDeleted).To(Equal("1"))
	})

	It("skips a tick while a cycle is still running", func() {
		tx.gate = make(chan struct{})
		tx.entered = make(chan struct{})
		sched = newScheduler(retention.SchedulerConfig{})

		firstDone := make(chan bool)
		go func() {
			_, ran := sched.Tick(ctx)
			firstDone <- ran
		}()
		Eventually(tx.entered).Should(BeClosed())

		report, ran := sched.Tick(ctx)
		Expect(ran).To(BeFalse())
		Expect(report).To(BeNil())

		status := sched.Status()
		Expect(status.Running).To(BeTrue())
		Expect(status.SkippedTicks).To(Equal(int64(1)))

		close(tx.gate)
		Eventually(firstDone).Should(Receive(BeTrue()))
		Expect(mem.Messages(1)).To(BeEmpty())
		Expect(sched.Status().Running).To(BeFalse())
	})

	It("keeps the purge result when housekeeping fails", func() {
		mem.InjectError("RetentionAudits.ArchiveExpired", errors.New("disk full"))
		sched = newScheduler(retention.SchedulerConfig{})

		report, _ := sched.Tick(ctx)
		Expect(report.Purge.TotalDeleted).To(Equal(1))
		Expect(report.Archive.OK).To(BeFalse())
		Expect(report.Archive.Error).To(ContainSubstring("disk full"))
		Expect(report.GracePurge.OK).To(BeTrue())
	})

	It("survives a panicking purge and runs the next cycle", func() {
		tx.panicThread = 1
		sched = newScheduler(retention.SchedulerConfig{})

		report, ran := sched.Tick(ctx)
		Expect(ran).To(BeTrue())
		Expect(report.PurgeError).To(ContainSubstring("corrupt row"))
		Expect(report.Archive.OK).To(BeTrue())
		Expect(sched.Status().Running).To(BeFalse())
		Expect(sched.Status().LastRun).To(Equal(report))

		tx.panicThread = 0
		report, ran = sched.Tick(ctx)
		Expect(ran).To(BeTrue())
		Expect(report.PurgeError).To(BeEmpty())
		Expect(report.Purge.TotalDeleted).To(Equal(1))
	})

	It("starts once and fires on the interval", func() {
		sched = newScheduler(retention.SchedulerConfig{Interval: time.Hour})

		Expect(sched.Start(ctx)).To(BeTrue())
		Expect(sched.Start(ctx)).To(BeFalse())
		DeferCleanup(sched.Stop)

		Eventually(clk.Waiters).Should(Equal(1))
		status := sched.Status()
		Expect(status.Started).To(BeTrue())
		Expect(status.Schedule).To(Equal("every 1h0m0s"))
		Expect(*status.NextRunAt).To(Equal(now.Add(time.Hour)))

		clk.Advance(time.Hour)
		Eventually(func() *retention.CycleReport { return sched.Status().LastRun }).ShouldNot(BeNil())
		Expect(mem.Messages(1)).To(BeEmpty())

		clk.Set(now.Add(3 * time.Hour))
		Eventually(func() string { return sched.Status().LastRunAge }).Should(Equal("2 hours ago"))
	})

	It("can be restarted after Stop", func() {
		sched = newScheduler(retention.SchedulerConfig{Interval: time.Hour})
		Expect(sched.Start(ctx)).To(BeTrue())
		sched.Stop()
		Expect(sched.Status().Started).To(BeFalse())
		Expect(sched.Start(ctx)).To(BeTrue())
		sched.Stop()
	})

	It("computes the next run from a cron expression", func() {
		sched = newScheduler(retention.SchedulerConfig{Cron: "30 4 * * *"})
		Expect(sched.Start(ctx)).To(BeTrue())
		DeferCleanup(sched.Stop)

		Eventually(clk.Waiters).Should(Equal(1))
		Expect(*sched.Status().NextRunAt).To(Equal(time.Date(2026, 6, 1, 4, 30, 0, 0, time.UTC)))
	})

	It("rejects an invalid cron expression", func() {
		purger := retention.NewPurger(tx, nil, nil, clk, sequence(1), nil, retention.PurgerConfig{})
		_, err := retention.NewScheduler(purger, retention.SchedulerConfig{Cron: "every tuesday"}, clk, nil)
		Expect(err).To(MatchError(ContainSubstring("invalid retention cron")))
	})
})
