package logging

import (
	"path/filepath"
	"strings"
	"time"
)

// SessionLogPath names the log file of one CLI invocation:
// <logsDir>/<app>_<UTC start>.log. Path separators in app are replaced.
func SessionLogPath(logsDir, app string, start time.Time) string {
	app = strings.NewReplacer("/", "_", `\`, "_").Replace(app)
	return filepath.Join(logsDir, app+"_"+start.UTC().Format("20060102T150405Z")+".log")
}
