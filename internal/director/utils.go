package director

import (
	"fmt"
	"path/filepath"
	"time"
)

// TimelineDir is where generated timelines go by default.
var TimelineDir = filepath.Join("output", "timelines")

// GenerateTimelinePath creates a timestamped timeline filename
func GenerateTimelinePath() string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(TimelineDir, fmt.Sprintf("timeline_%s.yaml", timestamp))
}
