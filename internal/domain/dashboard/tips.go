package dashboard

import "time"

var tips = []string{
	"Drink at least 2-3 liters of water through the day.",
	"Add some protein to every meal to stay full for longer.",
	"Don't skip breakfast, your body needs fuel in the morning.",
	"Work at least one piece of fruit into your meals today.",
	"Keep heavy meals away from late evenings for better sleep.",
	"A 10 minute walk after eating helps digestion.",
	"Plan tomorrow's meals tonight to dodge junk food cravings.",
}

// Tips returns a copy of the rotation list.
func Tips() []string {
	out := make([]string, len(tips))
	copy(out, tips)
	return out
}

// TipFor picks the tip for the calendar day of t: index = day-of-month mod len(tips).
func TipFor(t time.Time) string {
	return tips[t.Day()%len(tips)]
}
