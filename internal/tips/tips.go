// Package tips holds the one-line hints shown under the dashboard.
package tips

import (
	"strings"

	"github.com/rnwolfe/tally/internal/day"
)

var all = []string{
	"`tally done <habit>` to check a habit off for today.",
	"`tally done <habit> --date yesterday` to catch up on a missed check-in.",
	"`tally board` to work through the day's habits with the keyboard.",
	"`tally habit add Run --days M,W,F` to schedule a habit on specific weekdays.",
	"`tally habit add Water --limit 8` for habits you repeat several times a day.",
	"`tally grid <habit>` to see a habit's history as a heatmap.",
	"`tally streak` to compare current and best streaks across habits.",
	"`tally habit edit <habit> --days weekdays` to change a schedule without losing history.",
	"`tally habit archive <habit>` hides a habit but keeps its streaks.",
	"`tally goal add \"Run a marathon\"` then `tally goal link <habit> <goal>` to group habits.",
	"`tally export backup.json.age --encrypt` for a passphrase-protected backup.",
	"`tally import <file>` restores a backup; records are matched by ID.",
	"`tally serve` exposes the JSON API, with docs at /docs.",
	"`tally config set habits.week_start mon` to start heatmap weeks on Monday.",
	"`tally config set habits.timezone Europe/Berlin` if \"today\" looks off.",
	"`tally habit show <habit>` for the completion rate over scheduled days.",
}

// All returns all tips in the pool.
func All() []string {
	return all
}

// Daily returns a deterministic tip for the given day.
// The same tip is returned all day; it changes each day.
func Daily(d day.Key) string {
	return all[d.Time(nil).YearDay()%len(all)]
}

// DailyExcept is Daily, skipping tips that mention any of the given commands
// (the dashboard already suggests them).
func DailyExcept(d day.Key, commands ...string) string {
	start := d.Time(nil).YearDay()
	for i := range all {
		tip := all[(start+i)%len(all)]
		if !mentionsAny(tip, commands) {
			return tip
		}
	}
	return Daily(d)
}

func mentionsAny(tip string, commands []string) bool {
	for _, c := range commands {
		if strings.Contains(tip, "`tally "+c) {
			return true
		}
	}
	return false
}
