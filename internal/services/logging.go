package services

import applog "fintrack/internal/log"

func componentLogger(l *applog.Logger, component string) *applog.Logger {
	if l == nil {
		l = applog.New(applog.DefaultConfig())
	}
	return l.WithComponent(component)
}
