package timezone

import (
	"fmt"
	"theaterwatch/lib/telemetry"

	"github.com/robfig/cron/v3"
)

// Cron runs callbacks on standard 5-field cron specs evaluated in London
// time.
type Cron struct {
	cron *cron.Cron
}

func NewCron(tel telemetry.API) Cron {
	return Cron{
		cron: cron.New(
			cron.WithLogger(cronLogger{tel: tel}),
			cron.WithLocation(Location),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{tel: tel})),
		),
	}
}

// ValidateSpec reports whether spec is a valid 5-field cron spec.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

func (c Cron) Add(spec string, callback func()) error {
	_, err := c.cron.AddFunc(spec, callback)
	return err
}

func (c Cron) Start() {
	c.cron.Start()
}

// Stop stops scheduling and waits for a running callback to finish.
func (c Cron) Stop() {
	<-c.cron.Stop().Done()
}

type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		params = append(params, fmt.Sprintf("%v: %v", keysAndValues[i], keysAndValues[i+1]))
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(fmt.Sprintf("cron: %s", msg), l.formatParams(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(
		"cron",
		append([]any{fmt.Errorf("%s: %w", msg, err)}, l.formatParams(keysAndValues)...)...,
	)
}
