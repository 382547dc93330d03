package journal

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/kimhsiao/daycanvas/internal/models"
)

var eventColors = map[models.EventType]string{
	models.EventHappiness: "#f97316",
	models.EventSadness:   "#7dd3fc",
	models.EventFear:      "#facc15",
	models.EventDisgust:   "#86efac",
	models.EventAnger:     "#a855f7",
	models.EventSurprise:  "#ec4899",
	models.EventIDK:       "#9ca3af",
	models.EventSoSo:      "#ef4444",
}

var eventLabels = map[models.EventType]string{
	models.EventHappiness: "Happiness",
	models.EventSadness:   "Sadness",
	models.EventFear:      "Fear",
	models.EventDisgust:   "Disgust",
	models.EventAnger:     "Anger",
	models.EventSurprise:  "Surprise",
	models.EventIDK:       "IDK",
	models.EventSoSo:      "So-So",
}

// Color returns the indicator colour of an event type as #rrggbb. Unknown
// types are grey.
func Color(t models.EventType) string {
	if c, ok := eventColors[t]; ok {
		return c
	}
	return eventColors[models.EventIDK]
}

// RGB returns the indicator colour of an event type as 8-bit channels.
func RGB(t models.EventType) (r, g, b uint8) {
	c, err := colorful.Hex(Color(t))
	if err != nil {
		return 0x9c, 0xa3, 0xaf
	}
	return c.RGB255()
}

// Label returns the display name of an event type.
func Label(t models.EventType) string {
	if l, ok := eventLabels[t]; ok {
		return l
	}
	return string(t)
}

// Indicators returns the distinct event types recorded on date, in the order
// they first appear in events.
func Indicators(events []models.JournalEvent, date string) []models.EventType {
	seen := make(map[models.EventType]bool)
	out := []models.EventType{}
	for _, e := range events {
		if e.Date != date || seen[e.EventType] {
			continue
		}
		seen[e.EventType] = true
		out = append(out, e.EventType)
	}
	return out
}
