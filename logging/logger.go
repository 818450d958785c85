package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func BootstrapLogger() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.TextFormatter{})
	Log.SetLevel(logrus.DebugLevel)
	Log.SetReportCaller(true)
	Log.Out = os.Stdout
}
