package logger

import "go.uber.org/zap"

var Log *zap.Logger

func Init() {
	Log = zap.Must(zap.NewProduction())
}

// EnableDebug swaps the production logger for a development one.
// Called after config load when server.debug is set.
func EnableDebug() {
	Log.Sync()
	Log = zap.Must(zap.NewDevelopment())
}

func Sugar() *zap.SugaredLogger {
	return Log.Sugar()
}
