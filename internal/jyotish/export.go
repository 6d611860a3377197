package jyotish

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// SnapshotExport is the JSON-serializable representation of CosmicData.
type SnapshotExport struct {
	Time          time.Time    `json:"time"`
	GeneratedAt   time.Time    `json:"generated_at"`
	Provider      string       `json:"provider,omitempty"`
	Ayanamsa      float64      `json:"ayanamsa"`
	SunSign       string       `json:"sun_sign"`
	SunDignity    string       `json:"sun_dignity,omitempty"`
	MoonSign      string       `json:"moon_sign"`
	MoonDignity   string       `json:"moon_dignity,omitempty"`
	MoonNakshatra Nakshatra    `json:"moon_nakshatra"`
	Tithi         Tithi        `json:"tithi"`
	MoonPhase     string       `json:"moon_phase"`
	Illumination  float64      `json:"illumination_pct"`
	NextFullMoon  LunarExport  `json:"next_full_moon"`
	NextNewMoon   LunarExport  `json:"next_new_moon"`
	Bodies        []BodyExport `json:"bodies"`
}

// BodyExport is a JSON-friendly body placement.
type BodyExport struct {
	Name      string  `json:"name"`
	Sign      string  `json:"sign"`
	Degree    string  `json:"degree"`
	Longitude float64 `json:"longitude"`
	Nakshatra string  `json:"nakshatra"`
	Pada      int     `json:"pada"`
	Retro     bool    `json:"retrograde"`
	Dignity   string  `json:"dignity,omitempty"`
	Combust   bool    `json:"combust,omitempty"`
}

// LunarExport is a JSON-friendly lunar event.
type LunarExport struct {
	Time      time.Time `json:"time"`
	Sign      string    `json:"sign"`
	Nakshatra string    `json:"nakshatra"`
}

// ExportSnapshot converts CosmicData to an exportable format.
func ExportSnapshot(data CosmicData, generatedAt time.Time, provider string) *SnapshotExport {
	export := &SnapshotExport{
		Time:          data.Time,
		GeneratedAt:   generatedAt,
		Provider:      provider,
		Ayanamsa:      LahiriAyanamsa,
		SunSign:       data.SunSign.String(),
		SunDignity:    string(data.SunDignity),
		MoonSign:      data.MoonSign.String(),
		MoonDignity:   string(data.MoonDignity),
		MoonNakshatra: data.MoonNakshatra,
		Tithi:         data.Tithi,
		MoonPhase:     data.MoonPhase,
		Illumination:  math.Round(data.Illumination*10) / 10,
		NextFullMoon:  exportLunar(data.NextFullMoon),
		NextNewMoon:   exportLunar(data.NextNewMoon),
	}

	for _, b := range data.Bodies() {
		export.Bodies = append(export.Bodies, BodyExport{
			Name:      b.Name,
			Sign:      b.Sign.String(),
			Degree:    FormatDegree(DegreeInSign(b.Longitude)),
			Longitude: math.Round(b.Longitude*1e4) / 1e4,
			Nakshatra: b.Nakshatra.Name,
			Pada:      Pada(b.Longitude),
			Retro:     b.IsRetro,
			Dignity:   string(b.Dignity),
			Combust:   b.Combust,
		})
	}

	return export
}

func exportLunar(ev LunarEvent) LunarExport {
	return LunarExport{
		Time:      ev.Time,
		Sign:      ev.Sign.String(),
		Nakshatra: ev.Nakshatra.Name,
	}
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// FormatDegree formats decimal degrees as D°MM'. Minutes are truncated so
// a position late in a sign never prints as 30°00'.
func FormatDegree(deg float64) string {
	d := int(deg)
	m := int((deg-float64(d))*60 + 1e-9)
	if m > 59 {
		m = 59
	}
	return fmt.Sprintf("%d°%02d'", d, m)
}

// WriteSummaryTable writes a text table of all bodies to the given writer.
func WriteSummaryTable(w io.Writer, data CosmicData) {
	fmt.Fprintf(w, "Cosmic Weather @ %s\n", data.Time.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 72))

	fmt.Fprintf(w, "Sun  %-12s %-12s   Moon %-12s %-12s\n",
		data.SunSign, string(data.SunDignity), data.MoonSign, string(data.MoonDignity))
	fmt.Fprintf(w, "Nakshatra  %s (ruled by %s, %q)\n",
		data.MoonNakshatra.Name, data.MoonNakshatra.Ruler, data.MoonNakshatra.Meaning)
	fmt.Fprintf(w, "Tithi      %d %s, %s\n", data.Tithi.Index, data.Tithi.Name, data.Tithi.Paksha)
	fmt.Fprintf(w, "Phase      %s, %.1f%% illuminated\n", data.MoonPhase, data.Illumination)
	fmt.Fprintf(w, "Full Moon  %s in %s (%s)\n",
		data.NextFullMoon.Time.Format("2006-01-02 15:04 MST"), data.NextFullMoon.Sign, data.NextFullMoon.Nakshatra.Name)
	fmt.Fprintf(w, "New Moon   %s in %s (%s)\n",
		data.NextNewMoon.Time.Format("2006-01-02 15:04 MST"), data.NextNewMoon.Sign, data.NextNewMoon.Nakshatra.Name)
	fmt.Fprintln(w, strings.Repeat("─", 72))

	fmt.Fprintf(w, "%-8s %-12s %-8s %-18s %-2s %-6s %-12s\n",
		"Body", "Sign", "Degree", "Nakshatra", "Pd", "Retro", "Dignity")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, b := range data.Bodies() {
		retro := ""
		if b.IsRetro {
			retro = "R"
		}
		fmt.Fprintf(w, "%-8s %-12s %-8s %-18s %-2d %-6s %-12s\n",
			b.Name,
			b.Sign,
			FormatDegree(DegreeInSign(b.Longitude)),
			truncateStr(b.Nakshatra.Name, 18),
			Pada(b.Longitude),
			retro,
			string(b.Dignity),
		)
	}
}

// WriteNowLine writes a single-line summary.
func WriteNowLine(w io.Writer, data CosmicData) {
	fmt.Fprintf(w, "☉ %s  ☽ %s · %s · %s · %s %.0f%%\n",
		data.SunSign, data.MoonSign, data.MoonNakshatra.Name,
		data.Tithi.Name, data.MoonPhase, data.Illumination)
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
