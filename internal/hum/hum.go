// Package hum assesses electrical mains hum in a recording. The probable
// mains frequency comes from the system timezone (50 or 60 Hz); a narrowband
// energy measurement at that frequency decides whether the recording
// environment likely picked it up. The result is reporting advice only and
// never feeds back into segmentation.
package hum

import (
	"fmt"
	"math"
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"

	"github.com/ovozlab/speechmark/internal/dsp"
)

// humShareThreshold is the fraction of total signal power at the mains
// frequency above which hum is reported.
const humShareThreshold = 0.05

// Assessment is the hum check result for one recording.
type Assessment struct {
	FrequencyHz int     // probable mains frequency, 50 or 60
	PowerShare  float64 // fraction of signal power in the hum band
	Detected    bool
}

// Frequency returns the local mains frequency in Hz (50 or 60), defaulting
// to 50 Hz when the timezone cannot be resolved.
func Frequency() int {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return 50
	}
	return FrequencyForTimezone(timezone)
}

// FrequencyForTimezone returns the mains frequency for an IANA timezone.
func FrequencyForTimezone(timezone string) int {
	// UTC/GMT carry no country association.
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return 50
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return 50
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return 50
	}
	return frequencyForCountry(country)
}

// frequencyForCountry returns 60 Hz for countries on 60 Hz mains, 50 Hz for
// everything else including unknowns (50 Hz is the global majority).
func frequencyForCountry(country string) int {
	// Japan splits 50/60 Hz by region; the Tokyo region is most populous.
	if country == "Japan" {
		return 50
	}
	if hz60Countries[country] {
		return 60
	}
	return 50
}

// Assess measures the signal's power at the local mains frequency.
func Assess(sig dsp.Signal) Assessment {
	return AssessAt(sig, Frequency())
}

// AssessAt measures the signal's power at the given mains frequency using a
// Goertzel filter and compares it to total power.
func AssessAt(sig dsp.Signal, freqHz int) Assessment {
	a := Assessment{FrequencyHz: freqHz}
	if sig.Empty() || sig.SampleRate <= 0 || freqHz <= 0 {
		return a
	}

	var total float64
	for _, v := range sig.Samples {
		total += v * v
	}
	if total == 0 {
		return a
	}

	n := len(sig.Samples)
	k := math.Round(float64(n) * float64(freqHz) / float64(sig.SampleRate))
	w := 2 * math.Pi * k / float64(n)
	coeff := 2 * math.Cos(w)

	var s0, s1, s2 float64
	for _, v := range sig.Samples {
		s0 = v + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := (s1*s1 + s2*s2 - coeff*s1*s2) / float64(n)

	a.PowerShare = power / total
	a.Detected = a.PowerShare > humShareThreshold
	return a
}

// Advice renders the assessment as a one-line recording tip.
func (a Assessment) Advice() string {
	if !a.Detected {
		return ""
	}
	return fmt.Sprintf("mains hum detected around %d Hz; consider a ground-isolated recording setup or a notch filter upstream", a.FrequencyHz)
}

// hz60Countries lists countries using 60 Hz mains power. All other countries
// use 50 Hz. Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var hz60Countries = map[string]bool{
	// North America
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	// Central America
	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	// Caribbean
	"Bahamas":             true,
	"Barbados":            true,
	"Cayman Islands":      true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,
	"U.S. Virgin Islands": true,

	// South America (partial, most use 50 Hz)
	"Brazil":    true,
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	// Asia (partial)
	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	// Pacific
	"Guam":             true,
	"American Samoa":   true,
	"Marshall Islands": true,
	"Micronesia":       true,
	"Palau":            true,
}
